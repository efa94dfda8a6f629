package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vendhansite/chatbot"
	"vendhansite/config"
	"vendhansite/database"
	"vendhansite/mailer"
	"vendhansite/otp"
	"vendhansite/site"
)

func main() {
	createAdmin := flag.String("create-admin", "", "create an admin user (username:password) and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}

	if *createAdmin != "" {
		if err := createAdminUser(db, *createAdmin); err != nil {
			log.Fatalf("creating admin user: %v", err)
		}
		log.Println("Admin user created")
		database.Close(db)
		return
	}

	mail := mailer.New(cfg)
	otpService := otp.NewService(db)
	bot := chatbot.New(cfg.OpenAIAPIKey)
	server := site.NewServer(db, cfg, mail, otpService, bot)

	r := initRouter(server)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Running on http://localhost%s", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, r); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	// Block until a signal is received
	<-signals
	log.Println("Shutting down gracefully...")

	database.Close(db)
}

func initRouter(server *site.Server) *chi.Mux {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(site.RealIPMiddleware)
	r.Use(middleware.Logger)
	r.Use(httprate.LimitByIP(100, time.Minute)) // general rate limiter for all routes (shared across all routes)
	r.Use(middleware.Recoverer)

	r.Mount("/", server.Routes())

	return r
}

func createAdminUser(db *gorm.DB, arg string) error {
	username, password, ok := strings.Cut(arg, ":")
	if !ok || username == "" || password == "" {
		return errors.New("expected -create-admin username:password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// the session token column is unique, so every admin needs a distinct
	// one from the start; logging in rotates it
	return db.Create(&database.AdminUser{
		Username:     username,
		PasswordHash: hash,
		SessionToken: uuid.NewString(),
	}).Error
}
