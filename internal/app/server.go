package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/config"
	"github.com/GoArmGo/GalleryApp/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// runServer starts the HTTP API and blocks until ctx is cancelled, then shuts
// the server down gracefully.
func runServer(ctx context.Context, cfg *config.Config, h *handler.GalleryHandler, logger *slog.Logger) error {
	r := chi.NewRouter()
	r.Use(handler.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Route("/galleries", func(r chi.Router) {
		r.Post("/", h.CreateGallery)
		r.Post("/{galleryID}/albums", h.CreateAlbum)
		r.Post("/{galleryID}/shares", h.ShareGallery)
		r.Delete("/{galleryID}/shares/{userID}", h.UnshareGallery)
		r.Post("/{galleryID}/tags", h.AddGalleryTag)
		r.Delete("/{galleryID}/tags/{tagName}", h.RemoveGalleryTag)
	})

	r.Route("/albums/{albumID}", func(r chi.Router) {
		r.Get("/pictures", h.ListAlbumPictures)
		r.Post("/pictures", h.UploadPicture)
		r.Post("/pictures/archive", h.UploadArchive)
		r.Post("/tags", h.AddAlbumTag)
		r.Delete("/tags/{tagName}", h.RemoveAlbumTag)
	})

	r.Route("/pictures/{pictureID}", func(r chi.Router) {
		r.Get("/", h.GetPicture)
		r.Delete("/", h.DeletePicture)
		r.Post("/restore", h.RestorePicture)
		r.Get("/url", h.GetPictureURL)
		r.Get("/tags", h.GetPictureTags)
		r.Post("/tags", h.AddPictureTag)
		r.Delete("/tags/{tagName}", h.RemovePictureTag)
	})

	// auth_request endpoint for the edge proxy
	r.Get("/internal/verify", h.VerifyAccess)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("stopping http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
