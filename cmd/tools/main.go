package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"market-search/internal/db"
	"market-search/internal/models"
)

func main() {
	// Sub-commands
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	os.Args = os.Args[1:] // Shift args for flag parsing

	switch cmd {
	case "seed-bookings":
		seedBookings()
	case "snapshot":
		showSnapshot()
	case "clear-wishlist":
		clearWishlist()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tools <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  seed-bookings   Seed sample confirmed bookings for availability checks")
	fmt.Println("  snapshot        Show persisted listing snapshot stats")
	fmt.Println("  clear-wishlist  Clear the locally persisted wishlist")
}

func seedBookings() {
	dbPath := flag.String("db", "data/market-search.db", "Database path")
	flag.Parse()

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	day := func(offset int) time.Time {
		return time.Now().AddDate(0, 0, offset).Truncate(24 * time.Hour)
	}

	bookings := []models.Booking{
		{Kind: models.KindProperty, ListingID: 1, StartDate: day(3), EndDate: day(7)},
		{Kind: models.KindProperty, ListingID: 2, StartDate: day(1), EndDate: day(14)},
		{Kind: models.KindExperience, ListingID: 1, StartDate: day(5), EndDate: day(6)},
		{Kind: models.KindService, ListingID: 3, StartDate: day(2), EndDate: day(3)},
	}

	for _, b := range bookings {
		if err := database.AddBooking(ctx, b); err != nil {
			log.Printf("Failed to add booking for %s/%d: %v", b.Kind, b.ListingID, err)
			continue
		}
		log.Printf("Added booking: %s/%d %s - %s",
			b.Kind, b.ListingID,
			b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
	}

	log.Println("Done!")
}

func showSnapshot() {
	dbPath := flag.String("db", "data/market-search.db", "Database path")
	flag.Parse()

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	count, fetchedAt, err := database.SnapshotInfo(ctx)
	if err != nil {
		log.Fatalf("Failed to read snapshot info: %v", err)
	}

	fmt.Printf("Snapshot: %d listings\n", count)
	if !fetchedAt.IsZero() {
		fmt.Printf("Fetched:  %s (%s ago)\n", fetchedAt.Format(time.RFC3339), time.Since(fetchedAt).Round(time.Second))
	}

	listings, err := database.LoadSnapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	perKind := make(map[models.Kind]int)
	for _, l := range listings {
		perKind[l.Kind]++
	}
	for _, kind := range models.Kinds {
		fmt.Printf("  %-12s %d\n", kind, perKind[kind])
	}
}

func clearWishlist() {
	dbPath := flag.String("db", "data/market-search.db", "Database path")
	flag.Parse()

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.SaveWishlist(context.Background(), nil); err != nil {
		log.Fatalf("Failed to clear wishlist: %v", err)
	}

	log.Println("Wishlist cleared")
}
