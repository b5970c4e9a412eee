package main

import "os"

type Config struct {
	MongoURI   string
	DBName     string
	CORSOrigin string
	Port       string
	TxnEnabled bool // multi-document transactions need a replica set
	DemoMode   bool
}

func loadConfig() Config {
	return Config{
		MongoURI:   getenv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:     getenv("MONGODB_DB", "studyMate"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:5173"),
		Port:       getenv("PORT", "5000"),
		TxnEnabled: os.Getenv("MONGODB_TXN") == "true",
		DemoMode:   os.Getenv("DEMO_MODE") == "true",
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
