// Command seed_artifacts uploads local images into a generation session's
// prefix, standing in for the compute backend when running against the GCS
// emulator or a dev bucket.
//
//	seed_artifacts -session <id> -role final_design=./look.jpg -role tech_flat=./flat.jpg
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"github.com/yungbote/fabsketch-backend/internal/platform/objectstore"
	"github.com/yungbote/fabsketch-backend/internal/services"
)

type roleFiles map[generation.Role]string

func (r roleFiles) String() string {
	parts := make([]string, 0, len(r))
	for role, path := range r {
		parts = append(parts, string(role)+"="+path)
	}
	return strings.Join(parts, ",")
}

func (r roleFiles) Set(v string) error {
	name, path, ok := strings.Cut(strings.TrimSpace(v), "=")
	if !ok || strings.TrimSpace(path) == "" {
		return fmt.Errorf("expected role=path, got %q", v)
	}
	role, ok := generation.ParseRole(name)
	if !ok {
		return fmt.Errorf("unknown role %q", name)
	}
	r[role] = strings.TrimSpace(path)
	return nil
}

func main() {
	files := roleFiles{}
	var sessionID string
	var dryRun bool
	flag.StringVar(&sessionID, "session", "", "generation session id (a new one is minted when empty)")
	flag.Var(files, "role", "role=path to upload (repeatable; roles: sketch, final_design, tech_flat, try_on)")
	flag.BoolVar(&dryRun, "dry-run", false, "print planned keys without uploading")
	flag.Parse()

	_ = godotenv.Load()
	if len(files) == 0 {
		fmt.Println("no -role values provided")
		os.Exit(2)
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := objectstore.NewStoreFromEnv(log)
	if err != nil {
		fmt.Printf("init object store: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for role, path := range files {
		key := generation.ArtifactKey(sessionID, role)
		if dryRun {
			fmt.Printf("[dry-run] %s -> %s\n", path, key)
			continue
		}
		if err := upload(ctx, store, key, path); err != nil {
			fmt.Printf("upload %s: %v\n", key, err)
			os.Exit(1)
		}
		fmt.Printf("uploaded %s -> %s\n", path, store.PublicURL(key))
	}

	probe := services.NewObjectProbe(log, store, nil)
	tracker := services.NewMemorySessionTracker(1, time.Minute)
	st := services.NewSessionStatusResolver(log, probe, tracker, nil).Status(ctx, sessionID)
	out, _ := json.MarshalIndent(map[string]any{
		"session_id":      st.SessionID,
		"status":          st.State,
		"completed_files": st.CompletedFiles,
		"progress":        st.Progress,
	}, "", "  ")
	fmt.Println(string(out))
}

func upload(ctx context.Context, store objectstore.Store, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return store.Upload(ctx, key, f)
}
