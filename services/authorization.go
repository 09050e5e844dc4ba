package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"importer/models"
	authz "importer/models/authorization"
	dtos "importer/models/dtos/authorization"

	"github.com/labstack/gommon/log"
)

var publicAuthzErrorMessage string = "Something went wrong interfacing with the authorization service! Please contact the system administrators.."

var ErrAccessDenied = errors.New("access denied")

type (
	AuthzService struct {
		isEnabled        bool
		authorizationUrl string
		client           *http.Client
		logger           *log.Logger
	}
)

func NewAuthzService(cfg *models.Config, logger *log.Logger) *AuthzService {
	return &AuthzService{
		isEnabled:        cfg.AuthX.IsAuthorizationEnabled,
		authorizationUrl: strings.TrimRight(cfg.AuthX.AuthorizationUrl, "/"),
		client:           &http.Client{Timeout: 30 * time.Second},
		logger:           logger,
	}
}

func (a *AuthzService) IsEnabled() bool {
	return a.isEnabled
}

// EnsureAccessPermitted asks the authorization service whether the bearer of
// authnToken holds every one of permissions on resource.
func (a *AuthzService) EnsureAccessPermitted(ctx context.Context, authnToken string, resource authz.Resource, permissions []authz.Permission) error {
	permissionRequestJson := dtos.PermissionRequestDto{
		RequestedResource:   resource,
		RequiredPermissions: permissions,
	}

	permJsonData, err := json.Marshal(&permissionRequestJson)
	if err != nil {
		a.logger.Error(err)
		return errors.New(publicAuthzErrorMessage)
	}

	evaluateUrl := fmt.Sprintf("%s/%s/%s", a.authorizationUrl, "policy", "evaluate")
	permReq, err := http.NewRequestWithContext(ctx, http.MethodPost, evaluateUrl, bytes.NewBuffer(permJsonData))
	if err != nil {
		a.logger.Error(err)
		return errors.New(publicAuthzErrorMessage)
	}
	permReq.Header.Add("Authorization", "Bearer "+authnToken)
	permReq.Header.Add("Content-Type", "application/json")

	permRes, err := a.client.Do(permReq)
	if err != nil {
		a.logger.Error(err)
		return errors.New(publicAuthzErrorMessage)
	}
	defer permRes.Body.Close()

	if permRes.StatusCode != http.StatusOK {
		return ErrAccessDenied
	}

	var permJson map[string]interface{}
	if err := json.NewDecoder(permRes.Body).Decode(&permJson); err != nil {
		a.logger.Error(err)
		return errors.New(publicAuthzErrorMessage)
	}

	accessPermitted, isMapContainsKey := permJson["result"].(bool)
	if !isMapContainsKey {
		a.logger.Error("Missing 'result' key from authorization service response!")
		return errors.New(publicAuthzErrorMessage)
	}
	if !accessPermitted {
		return ErrAccessDenied
	}

	return nil
}

func (a *AuthzService) FetchAuthorizationHeader(headers http.Header) (string, error) {
	// return error if the Authorization header is missing
	authnToken := headers.Get("Authorization")
	if authnToken == "" {
		return "", errors.New("missing 'Authorization' HTTP header")
	}

	// remove "Bearer " if need be
	if scheme, token, found := strings.Cut(authnToken, " "); found && strings.EqualFold(scheme, "Bearer") {
		authnToken = token
	}

	return authnToken, nil
}
