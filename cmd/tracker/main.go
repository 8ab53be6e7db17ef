package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/beaconfund/granttrack/internal/client/storage"
	"github.com/beaconfund/granttrack/internal/logger"
	"github.com/beaconfund/granttrack/internal/passkey"
	"github.com/beaconfund/granttrack/internal/service"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive tracking shell, walking the applicant through
// the grant selection, passkey login, issuance/recovery and tracking stages.
func repl(fl *service.Flow, scanner *bufio.Scanner) {
	for {
		switch fl.Stage() {
		case service.StageGrantSelection:
			categories := fl.Categories()
			if len(categories) == 0 {
				fmt.Println("No submitted applications found on this device.")
				return
			}
			fmt.Println("Your grants:")
			for i, c := range categories {
				fmt.Printf("  %d) %s\n", i+1, c)
			}
			fmt.Print("Select a grant (number), or 'exit': ")
			if !scanner.Scan() {
				return
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "exit" {
				fmt.Println("Bye")
				return
			}
			choice := input
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(categories) {
				choice = categories[n-1]
			}
			if err := fl.SelectGrant(choice); err != nil {
				fmt.Println(fl.Err().Message)
			}

		case service.StagePasskeyLogin:
			if pk := fl.IssuedPasskey(); pk != "" {
				fmt.Printf("Your passkey: %s (keep it somewhere safe)\n", pk)
				fmt.Print("Press enter to log in with it, or type another passkey: ")
				if !scanner.Scan() {
					return
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					input = pk
				}
				if err := fl.SubmitPasskey(input); err != nil {
					fmt.Println(fl.Err().Message)
				}
				continue
			}
			fmt.Printf("[%s] Enter passkey, or 'get', 'recover', 'back', 'exit': ", fl.SelectedCategory())
			if !scanner.Scan() {
				return
			}
			input := strings.TrimSpace(scanner.Text())
			switch input {
			case "exit":
				fmt.Println("Bye")
				return
			case "back":
				fl.ChangeGrant()
			case "get":
				fl.RequestPasskey()
			case "recover":
				fl.RequestRecovery()
			case "":
				fmt.Println("Enter your passkey to continue.")
			default:
				if err := fl.SubmitPasskey(input); err != nil {
					fmt.Println(fl.Err().Message)
				}
			}

		case service.StageGetPasskey, service.StagePasskeyRecovery:
			prompt := "To get your passkey"
			if fl.Stage() == service.StagePasskeyRecovery {
				prompt = "To recover your passkey"
			}
			fmt.Printf("%s, confirm the details from your application.\n", prompt)
			fmt.Print("Email: ")
			if !scanner.Scan() {
				return
			}
			email := strings.TrimSpace(scanner.Text())
			fmt.Print("Password: ")
			if !scanner.Scan() {
				return
			}
			password := scanner.Text()
			if _, err := fl.SubmitCredentials(email, password); err != nil {
				fmt.Println(fl.Err().Message)
				fmt.Print("Try again? (y/n): ")
				if !scanner.Scan() {
					return
				}
				if strings.TrimSpace(scanner.Text()) != "y" {
					fl.ChangeGrant()
				}
			}

		case service.StageTracking:
			rec := fl.Record()
			fmt.Printf("Grant: %s\nStatus: %s\nSubmitted: %s\n",
				rec.GrantCategory, rec.Status, rec.SubmittedAt.Format("2006-01-02"))
			fmt.Print("Type 'back' to change grant, or 'exit': ")
			if !scanner.Scan() {
				return
			}
			switch strings.TrimSpace(scanner.Text()) {
			case "back":
				fl.ChangeGrant()
			case "exit":
				fmt.Println("Bye")
				return
			}
		}
	}
}

// main parses command-line flags, loads the local application store and
// starts the tracking shell.
func main() {
	var (
		storeFile string
		showVer   bool
	)

	flag.StringVar(&storeFile, "store", "applications.json", "path to the local application store")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("GrantTrack Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zl := logger.New()
	if err := zl.Init("warn"); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Log.Sync() }()

	ls := storage.NewLocalStore(storeFile)
	if err := ls.Load(); err != nil {
		log.Fatalf("failed to load application store: %v", err)
	}

	issuer := passkey.NewIssuer(zl.Log)
	fl := service.NewFlow(ls, issuer, zl.Log)

	repl(fl, bufio.NewScanner(os.Stdin))
}
