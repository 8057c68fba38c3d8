package utils

// BuildMemeCacheKey keys the short-lived per-subreddit meme cache. The
// version bumps on payload shape changes.
func BuildMemeCacheKey(subreddit string) string {
	return "meme:v1:sub=" + subreddit
}
