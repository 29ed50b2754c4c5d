package question

import (
	"context"
	"fmt"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// TopicHinter pulls a hot post title from a trivia-friendly subreddit to
// seed the generation prompt with variety. Purely advisory: every failure
// is swallowed by the caller and generation proceeds without a hint.
type TopicHinter struct {
	client    *reddit.Client
	subreddit string
}

// NewTopicHinter builds a hinter. Without Reddit credentials it uses the
// readonly client, which needs none.
func NewTopicHinter(clientID, secret, subreddit string) (*TopicHinter, error) {
	var (
		client *reddit.Client
		err    error
	)
	if clientID != "" && secret != "" {
		client, err = reddit.NewClient(reddit.Credentials{ID: clientID, Secret: secret})
	} else {
		client, err = reddit.NewReadonlyClient()
	}
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &TopicHinter{client: client, subreddit: subreddit}, nil
}

// Hint returns one hot post title, or an error the caller ignores.
func (t *TopicHinter) Hint(ctx context.Context) (string, error) {
	posts, _, err := t.client.Subreddit.HotPosts(ctx, t.subreddit, &reddit.ListOptions{Limit: 10})
	if err != nil {
		return "", fmt.Errorf("fetch hot posts: %w", err)
	}
	for _, p := range posts {
		if p != nil && p.Title != "" && !p.Stickied {
			return p.Title, nil
		}
	}
	return "", fmt.Errorf("no usable posts in r/%s", t.subreddit)
}
