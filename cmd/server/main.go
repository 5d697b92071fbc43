package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tagcard/backend/internal/config"
	"github.com/tagcard/backend/internal/handlers"
	appMiddleware "github.com/tagcard/backend/internal/middleware"
	"github.com/tagcard/backend/internal/services"
)

func main() {
	cfg := config.Load()

	// Storage backend: Mongo when configured, JSON-file store otherwise.
	var store services.ProfileStore
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoStore, err := services.NewMongoProfileService(ctx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		store = mongoStore
	} else {
		fileStore, err := services.NewFileProfileService(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open data dir %s: %v", cfg.DataDir, err)
		}
		store = fileStore
		log.Printf("Using file-backed store in %s", cfg.DataDir)
	}

	avatarService := services.NewAvatarService(cfg.UploadDir)
	cardRenderer := services.NewCardRenderer(avatarService, cfg.CardFontPath, cfg.CardFontBoldPath)
	viewRecorder := services.NewViewRecorder(store)
	mailer := services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SupportFromEmail, cfg.SupportToEmail)
	recaptcha := services.NewRecaptchaVerifier(cfg.RecaptchaSecret)

	publicHandler := handlers.NewPublicHandler(store, viewRecorder)
	artifactHandler := handlers.NewArtifactHandler(publicHandler, cardRenderer, cfg.PublicBaseURL)
	profileHandler := handlers.NewProfileHandler(store, avatarService)
	tagHandler := handlers.NewTagHandler(store)
	avatarHandler := handlers.NewAvatarHandler(store, avatarService, cfg.MaxUploadSizeMB)
	supportHandler := handlers.NewSupportHandler(recaptcha, mailer)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public profile pipeline: no auth, keyed only by the opaque public ID.
	r.Route("/p/{publicId}", func(r chi.Router) {
		r.Get("/", publicHandler.GetPublicProfile)
		r.Get("/vcard", artifactHandler.GetVCard)
		r.Get("/qr.png", artifactHandler.GetQRCode)
		r.Get("/card.png", artifactHandler.GetCardPNG)
		r.Get("/card.pdf", artifactHandler.GetCardPDF)
		r.Get("/share/{target}", artifactHandler.GetShareAction)
	})

	r.Route("/api", func(r chi.Router) {
		// Public help request.
		r.Post("/support", supportHandler.SubmitHelpRequest)

		// Owner routes.
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpsertProfile)
				r.Get("/stats", profileHandler.GetStats)

				r.Post("/tags", tagHandler.AddTag)
				r.Get("/tags", tagHandler.ListTags)
				r.Delete("/tags/{tagId}", tagHandler.DeleteTag)

				r.Post("/links", tagHandler.AddLink)
				r.Get("/links", tagHandler.ListLinks)
				r.Delete("/links/{linkId}", tagHandler.DeleteLink)

				r.Post("/avatar", avatarHandler.Upload)
				r.Delete("/avatar", avatarHandler.Delete)
			})

			r.Delete("/account", profileHandler.DeleteAccount)
		})
	})

	// Serve uploaded avatars.
	workDir, _ := os.Getwd()
	filesDir := http.Dir(workDir + "/" + cfg.UploadDir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesDir)))

	log.Printf("TagCard API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
