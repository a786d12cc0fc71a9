// Package developer implements application, webhook, custom-claim and
// branding management for the developers who register OAuth/OIDC clients
// against UniAuth.
package developer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/model"
	"github.com/uniauth/uniauth/internal/store/postgres"
	"github.com/uniauth/uniauth/internal/vault"
)

type Service struct {
	store *postgres.Store
}

func New(store *postgres.Store) *Service {
	return &Service{store: store}
}

// RegisterInput mirrors the fields a developer supplies when creating an
// application.
type RegisterInput struct {
	Name              string
	Type              model.ClientType
	OwnerUserID       uuid.UUID
	RedirectURIs      []string
	AllowedGrantTypes []string
	AllowedScopes     []string
}

// Register creates a new application. Confidential clients (web, m2m) get a
// generated secret returned exactly once; public clients (spa, native) never
// get one; public clients authenticate with PKCE instead.
func (s *Service) Register(ctx context.Context, in RegisterInput) (app *model.Application, plainSecret string, err error) {
	app = &model.Application{
		ClientID:          "uniauth_" + uuid.NewString(),
		Name:              in.Name,
		Type:              in.Type,
		OwnerUserID:       in.OwnerUserID,
		RedirectURIs:      in.RedirectURIs,
		AllowedGrantTypes: in.AllowedGrantTypes,
		AllowedScopes:     in.AllowedScopes,
		Active:            true,
	}

	var secretHash *string
	if !app.IsPublic() {
		plain, hash, genErr := vault.GenerateClientSecret()
		if genErr != nil {
			return nil, "", fmt.Errorf("developer: generate client secret: %w", genErr)
		}
		plainSecret = plain
		secretHash = &hash
	}

	if err := s.store.CreateApplication(ctx, app, secretHash); err != nil {
		return nil, "", fmt.Errorf("developer: create application: %w", err)
	}
	return app, plainSecret, nil
}

func (s *Service) Get(ctx context.Context, clientID string) (*model.Application, error) {
	app, err := s.store.GetApplication(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperr.New(apperr.NotFound, "application not found")
	}
	return app, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Application, error) {
	return s.store.ListApplicationsByOwner(ctx, ownerID)
}

// Update applies the mutable subset of an application's configuration
//.
func (s *Service) Update(ctx context.Context, app *model.Application) error {
	return s.store.UpdateApplication(ctx, app)
}

func (s *Service) RotateSecret(ctx context.Context, clientID string) (plainSecret string, err error) {
	app, err := s.Get(ctx, clientID)
	if err != nil {
		return "", err
	}
	if app.IsPublic() {
		return "", apperr.New(apperr.InvalidRequest, "public clients have no secret to rotate")
	}
	plain, hash, err := vault.GenerateClientSecret()
	if err != nil {
		return "", fmt.Errorf("developer: generate client secret: %w", err)
	}
	if err := s.store.RotateApplicationSecret(ctx, clientID, hash); err != nil {
		return "", fmt.Errorf("developer: rotate application secret: %w", err)
	}
	return plain, nil
}

func (s *Service) Delete(ctx context.Context, clientID string) error {
	return s.store.DeleteApplication(ctx, clientID)
}

// --- Custom claims ---

// GetCustomClaims returns the application's custom-claim document as a
// structpb.Struct — a typed, self-describing representation that the OAuth
// Engine merges into ID tokens (internal/tokensigner's Claims.Custom).
func (s *Service) GetCustomClaims(ctx context.Context, clientID string) (*structpb.Struct, error) {
	raw, err := s.store.CustomClaimsJSON(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("developer: unmarshal custom claims: %w", err)
	}
	return out, nil
}

// SetCustomClaims merges patch into the existing claim document rather than
// replacing it outright — a developer adding one claim must not clobber
// claims another API call configured moments earlier.
func (s *Service) SetCustomClaims(ctx context.Context, clientID string, patch *structpb.Struct) (*structpb.Struct, error) {
	current, err := s.GetCustomClaims(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if current.GetFields() == nil {
		current = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	for k, v := range patch.GetFields() {
		current.Fields[k] = v
	}
	raw, err := protojson.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("developer: marshal custom claims: %w", err)
	}
	if err := s.store.SetCustomClaimsJSON(ctx, clientID, raw); err != nil {
		return nil, err
	}
	return current, nil
}

// --- Branding ---

type Branding struct {
	LogoURL         string `json:"logo_url"`
	PrimaryColor    string `json:"primary_color"`
	ApplicationName string `json:"application_name"`
}

func (s *Service) SetBranding(ctx context.Context, clientID string, b Branding) error {
	raw, err := marshalBranding(b)
	if err != nil {
		return err
	}
	return s.store.SetBranding(ctx, clientID, raw)
}

func (s *Service) GetBranding(ctx context.Context, clientID string) (*Branding, error) {
	raw, err := s.store.GetBranding(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &Branding{}, nil
	}
	return unmarshalBranding(raw)
}

// --- Webhooks ---

func (s *Service) CreateWebhook(ctx context.Context, applicationID, targetURL, secret string, events []string) (*model.Webhook, error) {
	wh := &model.Webhook{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		TargetURL:     targetURL,
		Secret:        secret,
		Events:        events,
		Active:        true,
	}
	if err := s.store.CreateWebhook(ctx, wh); err != nil {
		return nil, err
	}
	return wh, nil
}

func (s *Service) ListWebhooks(ctx context.Context, applicationID string) ([]*model.Webhook, error) {
	return s.store.ListWebhooksForApp(ctx, applicationID)
}

func (s *Service) DeleteWebhook(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteWebhook(ctx, id)
}

func (s *Service) SetWebhookActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.store.SetWebhookActive(ctx, id, active)
}
