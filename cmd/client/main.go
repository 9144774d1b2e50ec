package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/iliyamo/job-application-tracker/internal/client/api"
	"github.com/iliyamo/job-application-tracker/internal/client/state"
	"github.com/iliyamo/job-application-tracker/internal/client/storage"
	"github.com/iliyamo/job-application-tracker/internal/model"
)

// The CLI is a thin shell over the state containers: every screen change
// first consults the route guards, and all data flows through the session
// and job store rather than direct API calls.

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("JOBTRACK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4000/api"
	}
	tokenPath := os.Getenv("JOBTRACK_TOKEN_FILE")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot resolve home dir:", err)
			os.Exit(1)
		}
		tokenPath = filepath.Join(home, ".jobtrack", "token")
	}

	client := api.New(baseURL)
	session := state.NewSession(client, storage.NewTokenFile(tokenPath))
	jobs := state.NewJobStore(client, session)

	// Keep the prompt in sync with auth changes.
	status := "guest"
	unsubscribe := session.Subscribe(func(st *state.AuthState) {
		if st == nil {
			status = "guest"
			return
		}
		if st.User != nil {
			status = st.User.Email
			return
		}
		status = "authenticated"
	})
	defer unsubscribe()

	fmt.Println("job tracker client — type 'help' for commands")
	runREPL(context.Background(), session, jobs, &status, bufio.NewScanner(os.Stdin))
}

func runREPL(ctx context.Context, session *state.Session, jobs *state.JobStore, status *string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("jt> %s > ", *status)
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
			printHelp(session)
		case "register", "login":
			// Login screen: authenticated users are redirected away.
			if g := state.RequireGuest(session); !g.Allowed {
				fmt.Println("already logged in — redirecting to", g.Redirect)
				continue
			}
			doAuth(ctx, session, cmd, args)
		case "logout":
			session.Logout()
			fmt.Println("logged out")
		case "dashboard":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			jobs.Refresh(ctx)
			printDashboard(jobs)
		case "list":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			jobs.Refresh(ctx)
			printJobs(jobs)
		case "add":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			doAdd(ctx, jobs, args)
		case "status":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			doStatus(ctx, jobs, args)
		case "rm":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			doRemove(ctx, jobs, args)
		case "2fa-setup":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			resp, err := session.SetupTwoFactor(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("secret:", resp.Secret)
			fmt.Println("qr (data URI):", resp.QR[:40]+"...")
		case "2fa-verify":
			if g := state.RequireAuth(session); !g.Allowed {
				fmt.Println("please log in first — redirecting to", g.Redirect)
				continue
			}
			if len(args) < 1 {
				fmt.Println("usage: 2fa-verify <code>")
				continue
			}
			resp, err := session.VerifyTwoFactor(ctx, api.TwoFactorVerifyRequest{Token: args[0]})
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(resp.Message)
		case "exit", "quit":
			return
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func printHelp(session *state.Session) {
	if session.IsAuthenticated() {
		fmt.Println("commands: dashboard, list, add <company> <title>, status <id> <status>, rm <id>, 2fa-setup, 2fa-verify <code>, logout, exit")
		return
	}
	fmt.Println("commands: register <email> <password>, login <email> <password>, exit")
}

func doAuth(ctx context.Context, session *state.Session, cmd string, args []string) {
	if len(args) < 2 {
		fmt.Printf("usage: %s <email> <password>\n", cmd)
		return
	}
	creds := api.Credentials{Email: args[0], Password: args[1]}
	var err error
	if cmd == "register" {
		_, err = session.Register(ctx, creds)
	} else {
		_, err = session.Login(ctx, creds)
	}
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("welcome!")
}

func doAdd(ctx context.Context, jobs *state.JobStore, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: add <company> <title...>")
		return
	}
	in := model.JobInput{Company: args[0], Title: strings.Join(args[1:], " ")}
	job, err := jobs.AddJob(ctx, in)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("added %s — %s (%s) id=%s\n", job.Company, job.Title, job.Status, job.ID)
}

func doStatus(ctx context.Context, jobs *state.JobStore, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: status <id> <applied|phone-screen|interview|offer|rejected|wishlist>")
		return
	}
	job, err := jobs.UpdateJobStatus(ctx, args[0], model.JobStatus(args[1]))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s — %s is now %s\n", job.Company, job.Title, job.Status)
}

func doRemove(ctx context.Context, jobs *state.JobStore, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: rm <id>")
		return
	}
	if err := jobs.RemoveJob(ctx, args[0]); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("removed")
}

func printJobs(jobs *state.JobStore) {
	snap := jobs.Snapshot()
	if snap.Err != "" {
		fmt.Println("error:", snap.Err)
		return
	}
	if len(snap.Jobs) == 0 {
		fmt.Println("no jobs yet — try 'add'")
		return
	}
	for _, j := range snap.Jobs {
		fmt.Printf("%-36s  %-14s  %s — %s\n", j.ID, j.Status, j.Company, j.Title)
	}
}

func printDashboard(jobs *state.JobStore) {
	snap := jobs.Snapshot()
	if snap.Err != "" {
		fmt.Println("error:", snap.Err)
		return
	}
	sum := jobs.Summary()
	fmt.Println("total applications:", sum.Total)
	for _, st := range model.AllStatuses {
		fmt.Printf("  %-14s %d\n", st, sum.ByStatus[st])
	}
	fmt.Println("upcoming follow-ups:", sum.UpcomingFollowUps)
}
