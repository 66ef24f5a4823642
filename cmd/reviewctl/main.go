// Command reviewctl is the operator console for moderating reviews. It talks
// to the database directly, bypassing the HTTP API.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"studyguide/internal/config"
	"studyguide/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set in environment")
	}
	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\n=== Review Manager ===")
		fmt.Println("1. Manage Pending Reviews (Approve/Reject)")
		fmt.Println("2. Manage Active Reviews (Unapprove/Delete)")
		fmt.Println("3. Exit")
		fmt.Print("Select: ")
		switch readLine(scanner) {
		case "1":
			handlePending(scanner, dataStore)
		case "2":
			handleApproved(scanner, dataStore)
		case "3":
			return
		default:
			fmt.Println("Invalid choice.")
		}
	}
}

func handlePending(scanner *bufio.Scanner, s store.Store) {
	for {
		reviews, err := s.ListReviews(false)
		if err != nil {
			fmt.Printf("Failed to list reviews: %v\n", err)
			return
		}
		fmt.Printf("\n--- Pending Reviews (%d) ---\n", len(reviews))
		for _, r := range reviews {
			fmt.Printf("[ID: %d] %s (%d/5): %s\n", r.ID, r.Name, r.Rating, snippet(r.Content))
		}
		if len(reviews) == 0 {
			fmt.Println("No pending reviews.")
			return
		}
		fmt.Print("\nEnter ID to APPROVE (or 'del ID' to delete, 'b' to back): ")
		choice := readLine(scanner)
		switch {
		case strings.EqualFold(choice, "b"):
			return
		case strings.HasPrefix(strings.ToLower(choice), "del "):
			id, err := strconv.ParseInt(strings.TrimSpace(choice[4:]), 10, 64)
			if err != nil {
				fmt.Println("Invalid format. Use 'del ID'")
				continue
			}
			ok, err := s.DeleteReview(id)
			report(ok, err, "Review deleted.", "Review not found.")
		default:
			id, err := strconv.ParseInt(choice, 10, 64)
			if err != nil {
				fmt.Println("Invalid ID.")
				continue
			}
			ok, err := s.SetReviewApproval(id, true)
			report(ok, err, "Review approved!", "Review not found.")
		}
	}
}

func handleApproved(scanner *bufio.Scanner, s store.Store) {
	for {
		reviews, err := s.ListReviews(true)
		if err != nil {
			fmt.Printf("Failed to list reviews: %v\n", err)
			return
		}
		fmt.Printf("\n--- Active/Approved Reviews (%d) ---\n", len(reviews))
		for _, r := range reviews {
			fmt.Printf("[ID: %d] %s (%d/5): %s\n", r.ID, r.Name, r.Rating, snippet(r.Content))
		}
		if len(reviews) == 0 {
			fmt.Println("No active reviews.")
			return
		}
		fmt.Print("\nEnter ID to UNAPPROVE (or 'del ID' to delete permanently, 'b' to back): ")
		choice := readLine(scanner)
		switch {
		case strings.EqualFold(choice, "b"):
			return
		case strings.HasPrefix(strings.ToLower(choice), "del "):
			id, err := strconv.ParseInt(strings.TrimSpace(choice[4:]), 10, 64)
			if err != nil {
				fmt.Println("Invalid format. Use 'del ID'")
				continue
			}
			fmt.Printf("Are you sure you want to PERMANENTLY DELETE review %d? (y/n): ", id)
			if !strings.EqualFold(readLine(scanner), "y") {
				continue
			}
			ok, err := s.DeleteReview(id)
			report(ok, err, "Review permanently deleted.", "Review not found.")
		default:
			id, err := strconv.ParseInt(choice, 10, 64)
			if err != nil {
				fmt.Println("Invalid ID.")
				continue
			}
			ok, err := s.SetReviewApproval(id, false)
			report(ok, err, "Review moved back to pending.", "Review not found.")
		}
	}
}

func report(ok bool, err error, success, missing string) {
	switch {
	case err != nil:
		fmt.Printf("Operation failed: %v\n", err)
	case ok:
		fmt.Println(success)
	default:
		fmt.Println(missing)
	}
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return content
}

func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(scanner.Text())
}
