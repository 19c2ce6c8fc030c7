package db

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	rtdb "firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"petcare-backend-go/internal/config"
)

// FirebaseClients groups the Admin SDK clients used by the server.
// Database is nil when FIREBASE_DATABASE_URL is not configured.
type FirebaseClients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
	Messaging *messaging.Client
	Database  *rtdb.Client
}

// Close releases the clients that hold connections.
func (c *FirebaseClients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}

// InitFirebase initializes the Firebase Admin SDK and returns its clients.
// Credentials come from a service account file, a base64 encoded service account JSON,
// a client email/private key pair, or Application Default Credentials, in that order.
func InitFirebase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*FirebaseClients, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("InitFirebase: appConfig cannot be nil")
	}

	credsOption, err := credentialsOption(appConfig, logger)
	if err != nil {
		return nil, err
	}

	fbConfig := &firebase.Config{
		ProjectID:   appConfig.FirebaseProjectID,
		DatabaseURL: appConfig.FirebaseDatabaseURL,
	}

	var app *firebase.App
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, fbConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, fbConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	clients := &FirebaseClients{}
	if clients.Firestore, err = app.Firestore(ctx); err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("projectID", appConfig.FirebaseProjectID))

	if clients.Auth, err = app.Auth(ctx); err != nil {
		clients.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	if clients.Messaging, err = app.Messaging(ctx); err != nil {
		clients.Close()
		return nil, fmt.Errorf("app.Messaging: %w", err)
	}

	if appConfig.FirebaseDatabaseURL != "" {
		if clients.Database, err = app.Database(ctx); err != nil {
			clients.Close()
			return nil, fmt.Errorf("app.Database: %w", err)
		}
		logger.Info("Realtime Database client initialized", zap.String("url", appConfig.FirebaseDatabaseURL))
	} else {
		logger.Warn("FIREBASE_DATABASE_URL not set; pet locations and chats stay in process memory")
	}

	return clients, nil
}

func credentialsOption(appConfig *config.Config, logger *zap.Logger) (option.ClientOption, error) {
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		return option.WithCredentialsFile(appConfig.GoogleApplicationCredentials), nil

	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil

	case appConfig.FirebaseClientEmail != "" && appConfig.FirebasePrivateKey != "":
		logger.Info("Initializing Firebase with client email and private key", zap.String("clientEmail", appConfig.FirebaseClientEmail))
		creds, err := serviceAccountJSON(appConfig.FirebaseProjectID, appConfig.FirebaseClientEmail, appConfig.FirebasePrivateKey)
		if err != nil {
			return nil, err
		}
		return option.WithCredentialsJSON(creds), nil
	}

	logger.Info("Initializing Firebase using Application Default Credentials (ADC)")
	return nil, nil
}

// serviceAccountJSON builds a minimal service account document. Private keys pasted into
// env files usually carry literal "\n" sequences instead of newlines.
func serviceAccountJSON(projectID, clientEmail, privateKey string) ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   projectID,
		"client_email": clientEmail,
		"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}
