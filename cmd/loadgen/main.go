// loadgen drives company/intern pairs through the messaging API: it seeds
// parties and rooms directly in postgres (standing in for the platform's
// signup and application workflows), then runs send + poll cycles over HTTP
// through the client package.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"jobmatch/client"
	"jobmatch/internal/db"
	"jobmatch/internal/directory"
	"jobmatch/internal/identity"
	"jobmatch/internal/messaging"
)

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base URL")
	dsn := flag.String("dsn", "", "postgres DSN for seeding parties and rooms")
	secret := flag.String("secret", "", "JWT secret shared with the server")
	pairs := flag.Int("pairs", 50, "number of company/intern pairs")
	messages := flag.Int("messages", 20, "messages per side")
	flag.Parse()

	if *dsn == "" || *secret == "" {
		log.Fatal("-dsn and -secret are required")
	}

	database, err := db.NewDatabase(*dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	parties := directory.NewPostgresDirectory(database.Conn)
	store := messaging.NewPostgresStore(database.Conn, 0)

	log.Printf("starting load: %d pairs, %d messages each side", *pairs, *messages)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *pairs; i++ {
		wg.Add(1)
		go func(pairID int) {
			defer wg.Done()
			if err := runPair(parties, store, *baseURL, *secret, pairID, *messages); err != nil {
				log.Printf("pair %d failed: %v", pairID, err)
			}
		}(i)
	}
	wg.Wait()

	log.Printf("load complete in %s", time.Since(start))
}

func runPair(parties *directory.PostgresDirectory, store *messaging.PostgresStore,
	baseURL, secret string, pairID, messages int) error {
	ctx := context.Background()

	// Seed one company, one intern and a room between them (the out-of-core
	// creation workflow).
	companyUID := fmt.Sprintf("load_%d_company_%d", pairID, time.Now().UnixNano())
	internUID := fmt.Sprintf("load_%d_intern_%d", pairID, time.Now().UnixNano())

	company, err := parties.CreateParty(ctx, companyUID, messaging.PartyCompany, fmt.Sprintf("Company %d", pairID))
	if err != nil {
		return err
	}
	intern, err := parties.CreateParty(ctx, internUID, messaging.PartyIntern, fmt.Sprintf("Intern %d", pairID))
	if err != nil {
		return err
	}
	room, err := store.CreateRoom(ctx, company.ID, intern.ID)
	if err != nil {
		return err
	}

	companyClient, err := newClient(baseURL, secret, companyUID, messaging.PartyCompany)
	if err != nil {
		return err
	}
	internClient, err := newClient(baseURL, secret, internUID, messaging.PartyIntern)
	if err != nil {
		return err
	}

	// Alternate sends; each side polls after sending and must observe its
	// own message (read-your-writes over the wire).
	var cursor *int64
	for i := 0; i < messages; i++ {
		for _, c := range []*client.Client{companyClient, internClient} {
			sent, err := c.Send(ctx, room.ID, fmt.Sprintf("message %d from pair %d", i, pairID))
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}
			got, err := c.Messages(ctx, room.ID, cursor)
			if err != nil {
				return fmt.Errorf("poll: %w", err)
			}
			if len(got) == 0 || got[len(got)-1].ID != sent.ID {
				return fmt.Errorf("own message %s not visible after send", sent.ID)
			}
			seq := got[len(got)-1].Seq
			cursor = &seq
		}
	}
	return nil
}

func newClient(baseURL, secret, uid string, kind messaging.PartyKind) (*client.Client, error) {
	token, err := identity.SignToken(secret, uid, string(kind), time.Hour)
	if err != nil {
		return nil, err
	}
	return client.New(baseURL, token, 10*time.Second), nil
}
