package ghstats

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	defaultCacheSize = 128
	defaultCacheTTL  = 10 * time.Minute
	maxTreeFiles     = 200
)

type LanguageStore interface {
	EnsureByName(ctx context.Context, names []string) error
}

type WeeklyActivity struct {
	Week    time.Time `json:"week"`
	Commits int       `json:"commits"`
}

// RepoStats is decorative data for a thread's external repository. Zero
// values mean the corresponding upstream call failed or returned nothing.
type RepoStats struct {
	Owner          string           `json:"owner"`
	Name           string           `json:"name"`
	Stars          int              `json:"stars"`
	Watchers       int              `json:"watchers"`
	OwnerAvatarURL string           `json:"owner_avatar_url,omitempty"`
	Languages      map[string]int   `json:"languages,omitempty"`
	Readme         string           `json:"readme,omitempty"`
	Files          []string         `json:"files,omitempty"`
	CommitActivity []WeeklyActivity `json:"commit_activity,omitempty"`
}

// Service fetches repo statistics from the GitHub API. Every call is
// best-effort: a failed call yields a default value for that one field and
// never fails the request. There are no retries.
type Service struct {
	client    *gh.Client
	languages LanguageStore
	cache     *expirable.LRU[string, RepoStats]
	logger    *zap.Logger
}

func NewService(httpClient *http.Client, token string, languages LanguageStore, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	client := gh.NewClient(httpClient)
	if strings.TrimSpace(token) != "" {
		client = client.WithAuthToken(token)
	}

	return &Service{
		client:    client,
		languages: languages,
		cache:     expirable.NewLRU[string, RepoStats](defaultCacheSize, nil, cacheTTL),
		logger:    logger,
	}
}

// Client exposes the underlying client so tests can point it at a stub API.
func (s *Service) Client() *gh.Client {
	return s.client
}

// Stats never returns an error; an unparsable URL or a fully failed fetch
// yields zero-valued stats.
func (s *Service) Stats(ctx context.Context, repoURL string) RepoStats {
	owner, name, ok := ParseRepoURL(repoURL)
	if !ok {
		s.logger.Debug("unparsable repo url", zap.String("url", repoURL))
		return RepoStats{}
	}

	key := owner + "/" + name
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	stats := RepoStats{Owner: owner, Name: name}
	defaultBranch := ""

	if repo, _, err := s.client.Repositories.Get(ctx, owner, name); err != nil {
		s.logger.Debug("github repo lookup failed", zap.String("repo", key), zap.Error(err))
	} else if repo != nil {
		stats.Stars = repo.GetStargazersCount()
		stats.Watchers = repo.GetSubscribersCount()
		stats.OwnerAvatarURL = repo.GetOwner().GetAvatarURL()
		defaultBranch = repo.GetDefaultBranch()
	}

	if langs, _, err := s.client.Repositories.ListLanguages(ctx, owner, name); err != nil {
		s.logger.Debug("github languages failed", zap.String("repo", key), zap.Error(err))
	} else {
		stats.Languages = langs
	}

	if readme, _, err := s.client.Repositories.GetReadme(ctx, owner, name, nil); err != nil {
		s.logger.Debug("github readme failed", zap.String("repo", key), zap.Error(err))
	} else if readme != nil {
		if content, err := readme.GetContent(); err == nil {
			stats.Readme = content
		}
	}

	if activity, _, err := s.client.Repositories.ListCommitActivity(ctx, owner, name); err != nil {
		s.logger.Debug("github commit activity failed", zap.String("repo", key), zap.Error(err))
	} else {
		for _, week := range activity {
			stats.CommitActivity = append(stats.CommitActivity, WeeklyActivity{
				Week:    week.GetWeek().Time,
				Commits: week.GetTotal(),
			})
		}
	}

	if defaultBranch != "" {
		if tree, _, err := s.client.Git.GetTree(ctx, owner, name, defaultBranch, true); err != nil {
			s.logger.Debug("github tree failed", zap.String("repo", key), zap.Error(err))
		} else if tree != nil {
			for _, entry := range tree.Entries {
				if len(stats.Files) >= maxTreeFiles {
					break
				}
				if p := entry.GetPath(); p != "" {
					stats.Files = append(stats.Files, p)
				}
			}
		}
	}

	s.ensureLanguages(ctx, stats.Languages)
	s.cache.Add(key, stats)
	return stats
}

func (s *Service) ensureLanguages(ctx context.Context, langs map[string]int) {
	if s.languages == nil || len(langs) == 0 {
		return
	}
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Strings(names)
	if err := s.languages.EnsureByName(ctx, names); err != nil {
		s.logger.Debug("ensure languages failed", zap.Error(err))
	}
}

// ParseRepoURL accepts "https://github.com/owner/name", "github.com/owner/name"
// and bare "owner/name" forms, with or without a trailing ".git".
func ParseRepoURL(raw string) (owner, name string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}

	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")
	raw = strings.TrimPrefix(raw, "www.")
	raw = strings.TrimPrefix(raw, "github.com/")
	raw = strings.TrimSuffix(raw, "/")
	raw = strings.TrimSuffix(raw, ".git")

	parts := strings.Split(raw, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	if strings.Contains(parts[0], ".") {
		// Some other host slipped through the prefix trimming.
		return "", "", false
	}
	return parts[0], parts[1], true
}
