package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type FirebaseConfig struct {
	ProjectID            string `yaml:"project_id"`
	PrivateKeyID         string `yaml:"-"`
	PrivateKey           string `yaml:"-"`
	ClientEmail          string `yaml:"-"`
	ClientID             string `yaml:"-"`
	AuthURI              string `yaml:"auth_uri"`
	TokenURI             string `yaml:"token_uri"`
	AuthProviderCertURL  string `yaml:"auth_provider_x509_cert_url"`
	ClientCertURL        string `yaml:"-"`
	DatabaseURL          string `yaml:"-"`
	WebAPIKey            string `yaml:"-"` // identitytoolkit password sign-in key
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Backend string `yaml:"backend"` // "firebase" or "memory"
	} `yaml:"store"`
	Log struct {
		Dev bool `yaml:"dev"`
	} `yaml:"log"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Firebase FirebaseConfig `yaml:"firebase"`
}

// LoadConfig reads config/config.yaml and then pulls every secret from the
// environment. Only non-sensitive settings live in the yaml file.
func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "firebase"
	}
	if cfg.Firebase.AuthURI == "" {
		cfg.Firebase.AuthURI = "https://accounts.google.com/o/oauth2/auth"
	}
	if cfg.Firebase.TokenURI == "" {
		cfg.Firebase.TokenURI = "https://oauth2.googleapis.com/token"
	}
	if cfg.Firebase.AuthProviderCertURL == "" {
		cfg.Firebase.AuthProviderCertURL = "https://www.googleapis.com/oauth2/v1/certs"
	}

	if v := os.Getenv("PRIVATE_KEY_ID"); v != "" {
		cfg.Firebase.PrivateKeyID = v
	}
	if v := os.Getenv("PRIVATE_KEY"); v != "" {
		cfg.Firebase.PrivateKey = v
	}
	if v := os.Getenv("CLIENT_EMAIL"); v != "" {
		cfg.Firebase.ClientEmail = v
	}
	if v := os.Getenv("CLIENT_ID"); v != "" {
		cfg.Firebase.ClientID = v
	}
	if v := os.Getenv("CLIENT_X509_CERT_URL"); v != "" {
		cfg.Firebase.ClientCertURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Firebase.DatabaseURL = v
	}
	if v := os.Getenv("FIREBASE_API_KEY"); v != "" {
		cfg.Firebase.WebAPIKey = v
	}

	if v := os.Getenv("EMAIL_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("EMAIL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = p
		}
	}
	if v := os.Getenv("EMAIL_USERNAME"); v != "" {
		cfg.Email.SMTPUser = v
		if cfg.Email.FromEmail == "" {
			cfg.Email.FromEmail = v
		}
	}
	if v := os.Getenv("EMAIL_ADDITIONAL_PSW"); v != "" {
		cfg.Email.SMTPPassword = v
	}

	return &cfg
}
