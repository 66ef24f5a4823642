// Command contactctl is the operator console for contact-form submissions.
// It talks to the database directly, bypassing the HTTP API.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"studyguide/internal/config"
	"studyguide/pkg/domain"
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
		fmt.Println("\n=== Contact Form Manager ===")
		fmt.Println("1. View Unresolved Submissions")
		fmt.Println("2. View Resolved Submissions Archive")
		fmt.Println("3. Exit")
		fmt.Print("Select: ")
		switch readLine(scanner) {
		case "1":
			handleUnresolved(scanner, dataStore)
		case "2":
			handleResolved(scanner, dataStore)
		case "3":
			return
		default:
			fmt.Println("Invalid choice.")
		}
	}
}

func handleUnresolved(scanner *bufio.Scanner, s store.Store) {
	for {
		submissions, err := s.ListContacts(false)
		if err != nil {
			fmt.Printf("Failed to list submissions: %v\n", err)
			return
		}
		fmt.Printf("\n=== Unresolved Contacts (%d) ===\n", len(submissions))
		for _, sub := range submissions {
			displaySubmission(sub)
		}
		if len(submissions) == 0 {
			return
		}
		fmt.Print("\nEnter ID to Mark as RESOLVED (or 'del ID' to delete, 'b' to back): ")
		choice := readLine(scanner)
		switch {
		case strings.EqualFold(choice, "b"):
			return
		case strings.HasPrefix(strings.ToLower(choice), "del "):
			id := strings.TrimSpace(choice[4:])
			ok, err := s.DeleteContact(id)
			report(ok, err, "Submission deleted.", "Submission not found.")
		default:
			ok, err := s.ResolveContact(choice)
			report(ok, err, "Marked as resolved!", "Submission not found.")
		}
	}
}

func handleResolved(scanner *bufio.Scanner, s store.Store) {
	for {
		submissions, err := s.ListContacts(true)
		if err != nil {
			fmt.Printf("Failed to list submissions: %v\n", err)
			return
		}
		fmt.Printf("\n=== Resolved Contacts (%d) ===\n", len(submissions))
		for _, sub := range submissions {
			displaySubmission(sub)
		}
		if len(submissions) == 0 {
			return
		}
		fmt.Print("\nEnter 'del ID' to permanently delete (or 'b' to back): ")
		choice := readLine(scanner)
		switch {
		case strings.EqualFold(choice, "b"):
			return
		case strings.HasPrefix(strings.ToLower(choice), "del "):
			id := strings.TrimSpace(choice[4:])
			ok, err := s.DeleteContact(id)
			report(ok, err, "Submission deleted permanently.", "Submission not found.")
		default:
			fmt.Println("Invalid command.")
		}
	}
}

func displaySubmission(s domain.ContactSubmission) {
	fmt.Printf("\n[%s] ID: %s\n", s.Timestamp.Format("2006-01-02 15:04"), s.ID)
	fmt.Printf("Name: %s | Email: %s\n", s.Name, s.Email)
	fmt.Printf("Subject: %s\n", s.Subject)
	fmt.Printf("Message: %s\n", s.Description)
	fmt.Println(strings.Repeat("-", 40))
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

func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(scanner.Text())
}
