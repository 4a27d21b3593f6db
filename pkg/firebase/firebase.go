package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNotConfigured means no service account was given and Firebase login
// stays disabled.
var ErrNotConfigured = errors.New("firebase credentials path not provided")

// Options selects the service account and, optionally, the project it
// belongs to when the credentials file does not name one.
type Options struct {
	CredentialsPath string
	ProjectID       string
}

// App bundles the admin app with the auth client used to verify ID tokens.
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

func InitFirebase(ctx context.Context, opts Options) (*App, error) {
	if opts.CredentialsPath == "" {
		return nil, ErrNotConfigured
	}
	if _, err := os.Stat(opts.CredentialsPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("firebase credentials file not found at %s", opts.CredentialsPath)
		}
		return nil, fmt.Errorf("stat firebase credentials: %w", err)
	}

	var appCfg *firebase.Config
	if opts.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: opts.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, option.WithCredentialsFile(opts.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	zlog.Info("firebase auth client ready", zap.String("project_id", opts.ProjectID))
	return &App{FirebaseApp: app, AuthClient: client}, nil
}
