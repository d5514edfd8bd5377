package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/client"
	"github.com/apiguave/fypapp-go/internal/config"
)

const usage = `usage: fypcli [flags] <command> [command flags]

commands:
  signup    register an account (-email)
  profile   publish a profile (-name, -bio, -gender, -looking)
  discover  list candidates (-limit)
  swipe     swipe on a candidate (-target, -pass, -super)

The session token lives only in memory, so every invocation signs in
with -id and -secret first (signup registers instead).
`

type app struct {
	sessions  *client.Sessions
	profiles  *client.Profiles
	discovery *client.Discovery
	matches   *client.MatchEngine
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	pdsURL := flag.String("pds", "", "PDS base URL (overrides config)")
	identifier := flag.String("id", "", "account identifier (email or handle)")
	secret := flag.String("secret", "", "account secret")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 || *identifier == "" || *secret == "" {
		flag.Usage()
		os.Exit(2)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	baseURL := *pdsURL
	if baseURL == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}
		baseURL = cfg.PDS.BaseURL
	}

	store := client.NewSessionStore()
	c := client.New(baseURL, store)
	c.SetLogger(log)

	a := &app{
		sessions:  client.NewSessions(c, store),
		profiles:  client.NewProfiles(c, store),
		discovery: client.NewDiscovery(c, store),
		matches:   client.NewMatchEngine(c, store),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "signup":
		err = a.signup(ctx, *identifier, *secret, args)
	case "profile":
		err = a.publishProfile(ctx, *identifier, *secret, args)
	case "discover":
		err = a.discover(ctx, *identifier, *secret, args)
	case "swipe":
		err = a.swipe(ctx, *identifier, *secret, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

func (a *app) signup(ctx context.Context, identifier, secret string, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", identifier, "account email")
	_ = fs.Parse(args)

	session, err := a.sessions.SignUp(ctx, identifier, secret, *email)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s as %s\n", session.Handle, session.DID)
	return nil
}

func (a *app) signIn(ctx context.Context, identifier, secret string) error {
	_, err := a.sessions.SignIn(ctx, identifier, secret)
	return errors.Wrap(err, "sign in failed")
}

func (a *app) publishProfile(ctx context.Context, identifier, secret string, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	bio := fs.String("bio", "", "bio")
	gender := fs.String("gender", "", "gender")
	looking := fs.String("looking", "", "comma-separated genders looked for")
	_ = fs.Parse(args)

	if err := a.signIn(ctx, identifier, secret); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	profile := fypapp.Profile{
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if *name != "" {
		profile.DisplayName = name
	}
	if *bio != "" {
		profile.Bio = bio
	}
	if *gender != "" {
		profile.Gender = gender
	}
	if *looking != "" {
		profile.LookingFor = strings.Split(*looking, ",")
	}

	ref, err := a.profiles.Create(ctx, profile)
	if err != nil {
		return err
	}
	fmt.Printf("profile published: %s\n", ref.URI)
	return nil
}

func (a *app) discover(ctx context.Context, identifier, secret string, args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	limit := fs.Int("limit", 10, "page size")
	_ = fs.Parse(args)

	if err := a.signIn(ctx, identifier, secret); err != nil {
		return err
	}

	cursor := ""
	for {
		cards, next, err := a.discovery.Discover(ctx, *limit, cursor)
		if err != nil {
			return err
		}
		for _, card := range cards {
			name := "(no profile)"
			if card.Profile != nil && card.Profile.DisplayName != nil {
				name = *card.Profile.DisplayName
			}
			extras := ""
			if card.MatchScore != nil {
				extras = fmt.Sprintf("  score=%d", *card.MatchScore)
			}
			fmt.Printf("%s  %s%s\n", card.DID, name, extras)
		}
		if next == "" {
			return nil
		}
		cursor = next
	}
}

func (a *app) swipe(ctx context.Context, identifier, secret string, args []string) error {
	fs := flag.NewFlagSet("swipe", flag.ExitOnError)
	target := fs.String("target", "", "candidate DID")
	pass := fs.Bool("pass", false, "swipe left instead of right")
	super := fs.Bool("super", false, "super-like")
	_ = fs.Parse(args)

	if *target == "" {
		return errors.New("-target is required")
	}
	if err := a.signIn(ctx, identifier, secret); err != nil {
		return err
	}

	if *pass {
		if err := a.matches.SwipeLeft(ctx, *target); err != nil {
			return err
		}
		fmt.Println("passed")
		return nil
	}

	ref, err := a.matches.SwipeRight(ctx, *target, *super)
	if err != nil {
		return err
	}
	if ref == nil {
		fmt.Println("liked, no match yet")
		return nil
	}
	fmt.Printf("it's a match! %s\n", ref.URI)
	return nil
}
