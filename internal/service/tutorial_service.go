package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/model"
)

// ErrInvalidYoutubeURL is returned when no video id can be read from a tutorial URL.
var ErrInvalidYoutubeURL = errors.New("not a YouTube video URL")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type TutorialService struct {
	resource
}

func NewTutorialService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *TutorialService {
	return &TutorialService{resource: newResource(api, store, ttl, log, "tutorial_service")}
}

func (s *TutorialService) List(ctx context.Context) ([]model.Tutorial, error) {
	tutorials := []model.Tutorial{}
	if _, err := s.query(ctx, "", "/tutorials", nil, &tutorials, cache.TagTutorials); err != nil {
		return nil, err
	}
	return tutorials, nil
}

func (s *TutorialService) Create(ctx context.Context, req *model.TutorialRequest) (*model.Tutorial, error) {
	body, err := tutorialBody(req)
	if err != nil {
		return nil, err
	}

	var t model.Tutorial
	if err := s.mutate(ctx, http.MethodPost, "/tutorials", body, &t, cache.TagTutorials); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TutorialService) Update(ctx context.Context, id string, req *model.TutorialRequest) (*model.Tutorial, error) {
	body, err := tutorialBody(req)
	if err != nil {
		return nil, err
	}

	var t model.Tutorial
	if err := s.mutate(ctx, http.MethodPatch, itemPath("/tutorials", id), body, &t, cache.TagTutorials); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TutorialService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodDelete, itemPath("/tutorials", id), nil, nil, cache.TagTutorials)
}

type tutorialPayload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	YoutubeURL     string `json:"youtubeURL"`
	YoutubeVideoID string `json:"youtubeVideoId"`
	Thumbnail      string `json:"thumbnail"`
}

func tutorialBody(req *model.TutorialRequest) (*tutorialPayload, error) {
	id := req.YoutubeVideoID
	if id == "" {
		var err error
		if id, err = YoutubeVideoID(req.YoutubeURL); err != nil {
			return nil, err
		}
	}
	return &tutorialPayload{
		Title:          req.Title,
		Description:    req.Description,
		YoutubeURL:     req.YoutubeURL,
		YoutubeVideoID: id,
		Thumbnail:      fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id),
	}, nil
}

// YoutubeVideoID extracts the video id from watch, short-link, embed and shorts URLs.
func YoutubeVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", ErrInvalidYoutubeURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidYoutubeURL
	}
	return id, nil
}
