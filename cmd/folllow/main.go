// Package main provides the Folllow edit CLI: an interactive session
// over the caller's tree with every change mirrored to a local file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/folllow/folllow-server/internal/editor"
	"github.com/folllow/folllow-server/internal/logger"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Folllow server base URL")
	token := flag.String("token", os.Getenv("FOLLLOW_TOKEN"), "session token (or FOLLLOW_TOKEN)")
	stateDir := flag.String("state-dir", defaultStateDir(), "directory for the edit mirror")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "no session token: sign in via the web app and pass -token or set FOLLLOW_TOKEN")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Writer: os.Stderr,
		Level:  logger.ParseLevel(*logLevel),
	})

	client := editor.NewClient(*server, *token)
	session := editor.NewSession(client, editor.NewMirror(*stateDir), log.Logger)

	ctx := context.Background()
	if err := session.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tree: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Folllow editor (type 'help' for commands)")
	runREPL(ctx, session, bufio.NewScanner(os.Stdin))
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".folllow"
	}
	return filepath.Join(home, ".folllow")
}

func runREPL(ctx context.Context, session *editor.Session, scanner *bufio.Scanner) {
	for {
		fmt.Printf("folllow %s > ", session.Form().Slug)
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printHelp()

		case "show":
			printForm(session.Form(), session.SlugStatus())

		case "bio":
			session.SetBio(strings.Join(args, " "))

		case "theme":
			if len(args) != 1 {
				fmt.Println("usage: theme <name>")
				continue
			}
			session.SetTheme(args[0])

		case "ads":
			if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
				fmt.Println("usage: ads on|off")
				continue
			}
			session.SetAdsEnabled(args[0] == "on")

		case "add":
			if len(args) != 2 {
				fmt.Println("usage: add <media> <url>")
				continue
			}
			session.AddLink(args[0], args[1])

		case "rm":
			i, ok := parseIndex(args)
			if !ok {
				fmt.Println("usage: rm <index>")
				continue
			}
			session.RemoveLink(i)

		case "move":
			if len(args) != 2 {
				fmt.Println("usage: move <from> <to>")
				continue
			}
			from, err1 := strconv.Atoi(args[0])
			to, err2 := strconv.Atoi(args[1])
			if err1 != nil || err2 != nil {
				fmt.Println("usage: move <from> <to>")
				continue
			}
			session.MoveLink(from, to)

		case "slug":
			if len(args) != 1 {
				fmt.Println("usage: slug <@handle>")
				continue
			}
			if err := session.CheckSlug(ctx, args[0]); err != nil {
				fmt.Println("check failed:", err)
				continue
			}
			if status := session.SlugStatus(); status != nil {
				if status.Available {
					fmt.Printf("%s is available\n", status.Slug)
				} else {
					fmt.Printf("%s: %s\n", status.Slug, strings.Join(status.Issues, "; "))
				}
			}

		case "image":
			if len(args) != 1 {
				fmt.Println("usage: image <path>")
				continue
			}
			session.SelectImage(args[0])
			fmt.Println("image staged; it uploads on save")

		case "save":
			tree, err := session.Submit(ctx)
			if err != nil {
				fmt.Println("save failed:", err)
				continue
			}
			fmt.Printf("saved %s (%d links)\n", tree.Slug, len(tree.Links))

		case "exit", "quit":
			return

		default:
			fmt.Printf("unknown command %q (try 'help')\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`Commands:
  show                 print the current form
  bio <text>           set the bio
  theme <name>         set the page theme
  ads on|off           toggle ads
  add <media> <url>    append a link
  rm <index>           remove a link
  move <from> <to>     reorder links
  slug <@handle>       check slug availability
  image <path>         stage a new avatar for upload
  save                 validate, upload, and save
  exit                 leave without saving`)
}

func printForm(form editor.Form, slug *editor.SlugStatus) {
	fmt.Printf("slug:  %s\n", form.Slug)
	fmt.Printf("bio:   %s\n", form.Bio)
	fmt.Printf("theme: %s\n", form.Theme)
	fmt.Printf("ads:   %v\n", form.AdsEnabled)
	for i, l := range form.Links {
		fmt.Printf("  [%d] %-10s %s\n", i, l.Media, l.URL)
	}
	if slug != nil && !slug.Available {
		fmt.Printf("slug check: %s blocked (%s)\n", slug.Slug, strings.Join(slug.Issues, "; "))
	}
}

func parseIndex(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false
	}
	return i, true
}
