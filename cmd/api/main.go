package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/uniprbooks/backend/internal/blob"
	"github.com/uniprbooks/backend/internal/config"
	"github.com/uniprbooks/backend/internal/db"
	"github.com/uniprbooks/backend/internal/model"
	"github.com/uniprbooks/backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	// A missing JWT_SECRET must stop the process here, before anything is
	// served.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	var images blob.Store
	if cfg.StorageBucket != "" {
		gcs, err := blob.NewGCSStore(context.Background(), cfg.StorageBucket)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		images = gcs
	} else {
		images = blob.NewLocalStore(cfg.UploadDir)
	}

	srv := server.New(nil, cfg, images)

	addr := ":" + cfg.Port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		if err := conn.AutoMigrate(&model.User{}, &model.Book{}, &model.Transaction{}, &model.Message{}); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
		srv.SetDB(conn)
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
