package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	JWTSecret    string
	FlushSeconds int
	OCRCmd       string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "picklist.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./picklist.log"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
		log.Printf("[config] JWT_SECRET not set, using insecure dev default")
	}
	flush := 15
	if v := os.Getenv("FLUSH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			flush = n
		}
	}
	ocr := os.Getenv("OCR_CMD")
	if ocr == "" {
		ocr = "tesseract"
	}

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, JWTSecret: secret, FlushSeconds: flush, OCRCmd: ocr}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s FLUSH_SECONDS=%d OCR_CMD=%s", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.FlushSeconds, cfg.OCRCmd)
	return cfg
}
