package app

import (
	"context"
	"sync"
)

// Application wires the client core together: config, credentials, the
// backend client, the stores and the send pipeline. The TUI and the CLI
// commands both sit on top of it.
type Application struct {
	Config   Config
	Logger   *Logger
	Client   *Client
	Creds    *CredentialStore
	Local    *LocalStore
	Pipeline *SendPipeline

	mu      sync.Mutex
	current Credentials
}

func NewApplication(cfg Config, profileDir string) *Application {
	if profileDir == "" {
		profileDir = DefaultProfileDir()
	}
	a := &Application{
		Config: cfg,
		Logger: OpenFileLogger(profileDir),
		Creds:  NewCredentialStore(profileDir),
		Local:  NewLocalStore(profileDir),
	}
	a.current = a.Creds.Load()
	a.Client = NewClient(cfg.BaseURL, cfg.RequestTimeout, func() string {
		return a.Credentials().Token
	})
	a.Pipeline = NewSendPipeline(a.Client, cfg.ProgressConfig(), a.Logger)
	a.Pipeline.ScreenplayType = cfg.ScreenplayType
	return a
}

// Credentials returns the identity currently signed in, possibly empty.
func (a *Application) Credentials() Credentials {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *Application) setCredentials(creds Credentials) {
	a.mu.Lock()
	a.current = creds
	a.mu.Unlock()
}

// Login authenticates and persists the identity. The returned error carries
// the backend's message when it sent one; callers render it inline rather
// than failing.
func (a *Application) Login(ctx context.Context, email, password string) error {
	resp, err := a.Client.Login(ctx, email, password)
	if err != nil {
		a.Logger.Error("login failed", map[string]interface{}{"email": email, "error": err.Error()})
		return err
	}
	creds := Credentials{User: resp.User, Token: resp.Token}
	a.setCredentials(creds)
	if err := a.Creds.Save(creds); err != nil {
		a.Logger.Warn("credentials not persisted", map[string]interface{}{"error": err.Error()})
	}
	a.Logger.Info("signed in", map[string]interface{}{"email": resp.User.Email})
	return nil
}

// Signup registers, then behaves like Login.
func (a *Application) Signup(ctx context.Context, name, email, password string) error {
	resp, err := a.Client.Signup(ctx, name, email, password)
	if err != nil {
		a.Logger.Error("signup failed", map[string]interface{}{"email": email, "error": err.Error()})
		return err
	}
	creds := Credentials{User: resp.User, Token: resp.Token}
	a.setCredentials(creds)
	if err := a.Creds.Save(creds); err != nil {
		a.Logger.Warn("credentials not persisted", map[string]interface{}{"error": err.Error()})
	}
	a.Logger.Info("signed up", map[string]interface{}{"email": resp.User.Email})
	return nil
}

// Logout drops the identity in memory and on disk.
func (a *Application) Logout() {
	a.setCredentials(Credentials{})
	a.Creds.Clear()
	a.Logger.Info("signed out", nil)
}

// SyncSessions fetches the session listing for the signed-in identity into
// the session store. A listing failure is swallowed: the store comes up
// loaded-but-empty and the UI proceeds.
func (a *Application) SyncSessions(ctx context.Context) {
	email := a.Credentials().User.Email
	if email == "" {
		a.Pipeline.Sessions.SetAll(nil)
		return
	}
	sessions, err := a.Client.Sessions(ctx, email)
	if err != nil {
		a.Logger.Warn("session listing failed", map[string]interface{}{"error": err.Error()})
		a.Pipeline.Sessions.SetAll(nil)
		return
	}
	a.Pipeline.Sessions.SetAll(sessions)
	if err := a.Local.SaveSessionSnapshot(email, sessions); err != nil {
		a.Logger.Warn("session snapshot not written", map[string]interface{}{"error": err.Error()})
	}
}

// OpenSession makes sessionID current and starts a history load for it. The
// fetched messages are delivered through the message store's stale-load
// guard, so a slow response for a superseded session is discarded.
func (a *Application) OpenSession(ctx context.Context, sessionID string) {
	a.Pipeline.Sessions.Select(sessionID)
	a.Pipeline.Messages.SetActive(sessionID)
	a.FetchMessages(ctx, sessionID)
}

// FetchMessages loads a session's history and offers it to the message store.
// Callers that already moved the active pointer use this directly so the
// pointer move and the fetch can happen on different goroutines.
func (a *Application) FetchMessages(ctx context.Context, sessionID string) {
	msgs, err := a.Client.SessionMessages(ctx, sessionID)
	if err != nil {
		a.Logger.Warn("message load failed", map[string]interface{}{
			"session": sessionID,
			"error":   err.Error(),
		})
		return
	}
	a.Pipeline.Messages.Deliver(sessionID, msgs)
}

// NewChat creates a provisional session and empties the message pane.
func (a *Application) NewChat() string {
	id := a.Pipeline.Sessions.CreateProvisional()
	a.Pipeline.Messages.SetActive(id)
	return id
}

// Send runs one turn through the pipeline for the signed-in identity.
func (a *Application) Send(ctx context.Context, input string) SendResult {
	return a.Pipeline.Send(ctx, input, a.Credentials().User.Email)
}
