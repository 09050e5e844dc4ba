package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"importer/models"
	"importer/utils"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	"github.com/labstack/gommon/log"
)

// DrsFetcher resolves GA4GH DRS object ids and downloads the object they point at.
type DrsFetcher struct {
	Url        string
	Username   string
	Password   string
	MaxRetries uint64
	// first retry delay; doubles on each further attempt
	InitialInterval time.Duration

	client *http.Client
	logger *log.Logger
}

func NewDrsFetcher(cfg *models.Config, client *http.Client, logger *log.Logger) *DrsFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &DrsFetcher{
		Url:             strings.TrimRight(cfg.Drs.Url, "/"),
		Username:        cfg.Drs.Username,
		Password:        cfg.Drs.Password,
		MaxRetries:      cfg.Drs.MaxRetries,
		InitialInterval: 500 * time.Millisecond,
		client:          client,
		logger:          logger,
	}
}

type drsObject struct {
	name      string
	accessUrl string
}

func (f *DrsFetcher) Fetch(ctx context.Context, identifier string, destDir string) (string, error) {
	var object *drsObject
	err := f.retry(ctx, identifier, func() error {
		var err error
		object, err = f.resolve(ctx, identifier)
		return err
	})
	if err != nil {
		return "", &models.FetchError{Identifier: identifier, Err: err}
	}

	name := filepath.Base(object.name)
	if name == "" || name == "." || name == "/" {
		name = identifier
	}
	destination := filepath.Join(destDir, name)

	err = f.retry(ctx, identifier, func() error {
		return f.download(ctx, object.accessUrl, destination)
	})
	if err != nil {
		return "", &models.FetchError{Identifier: identifier, Err: err}
	}

	f.logger.Infof("Fetched DRS object %s to %s", identifier, destination)
	return destination, nil
}

func (f *DrsFetcher) retry(ctx context.Context, identifier string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.InitialInterval

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err != nil {
			f.logger.Warnf("DRS attempt %d for %s failed: %v", attempt, identifier, err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, f.MaxRetries), ctx))
}

// resolve reads the object's name and first usable access url.
func (f *DrsFetcher) resolve(ctx context.Context, identifier string) (*drsObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Url+"/objects/"+url.PathEscape(identifier), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if f.Username != "" {
		req.SetBasicAuth(f.Username, f.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	jsonParsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("unreadable DRS response: %w", err))
	}

	object := &drsObject{}
	if name, ok := jsonParsed.Path("name").Data().(string); ok {
		object.name = name
	}

	methods, _ := jsonParsed.Search("access_methods").Children()
	for _, method := range methods {
		accessUrl, ok := method.Path("access_url.url").Data().(string)
		if !ok || accessUrl == "" {
			continue
		}
		object.accessUrl = accessUrl
		break
	}
	if object.accessUrl == "" {
		return nil, backoff.Permanent(fmt.Errorf("DRS object %s has no access url", identifier))
	}
	return object, nil
}

func (f *DrsFetcher) download(ctx context.Context, accessUrl string, destination string) error {
	parsed, err := url.Parse(accessUrl)
	if err != nil {
		return backoff.Permanent(err)
	}

	switch parsed.Scheme {
	case "file":
		if err := utils.CopyFile(parsed.Path, destination); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	case "http", "https":
	default:
		return backoff.Permanent(fmt.Errorf("unsupported access url scheme %q", parsed.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, accessUrl, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	if f.Username != "" && strings.HasPrefix(accessUrl, f.Url) {
		req.SetBasicAuth(f.Username, f.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(resp.StatusCode, body)
	}

	out, err := os.Create(destination)
	if err != nil {
		return backoff.Permanent(err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// statusError turns a non-2xx status into an error; client errors are not retried.
func statusError(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	err := fmt.Errorf("DRS responded %d: %s", code, strings.TrimSpace(string(body)))
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}
