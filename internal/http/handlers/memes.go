package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/cache"
	"github.com/jakirh/lunchboard/internal/utils"
)

const memeAPIBase = "https://meme-api.com/gimme/"

// Meme is the subset of the meme API payload the client renders.
type Meme struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	NSFW      bool   `json:"nsfw"`
}

// fallbackMeme is served when the upstream API is down or every candidate
// got filtered out.
var fallbackMeme = Meme{
	Title:     "When the lunch cutoff passes and you never answered",
	URL:       "https://i.imgur.com/jbkxtorig.png",
	PostLink:  "https://imgur.com",
	Subreddit: "aww",
}

// blockedWords is a small denylist applied to titles. Same spirit as a
// profanity filter library without pulling one in for five words.
var blockedWords = []string{"nsfw", "porn", "sex", "nude", "xxx"}

type MemesHandler struct {
	subreddits []string
	client     *http.Client
	cache      *cache.Cache
}

func NewMemesHandler(subreddits []string, memeCache *cache.Cache) *MemesHandler {
	if len(subreddits) == 0 {
		subreddits = []string{"aww", "wholesomememes", "foodmemes"}
	}

	return &MemesHandler{
		subreddits: subreddits,
		client:     &http.Client{Timeout: 5 * time.Second},
		cache:      memeCache,
	}
}

// Get proxies one safe meme. The upstream result is cached briefly per
// subreddit so a lunchtime refresh storm does not hammer the API.
func (h *MemesHandler) Get(ctx *gin.Context) {
	subreddit := ctx.Query("subreddit")
	if !h.allowed(subreddit) {
		subreddit = h.subreddits[rand.Intn(len(h.subreddits))]
	}

	if h.cache != nil {
		if v, ok := h.cache.Get(utils.BuildMemeCacheKey(subreddit)); ok {
			if m, ok := v.(Meme); ok {
				ctx.JSON(http.StatusOK, gin.H{"meme": m, "cached": true})
				return
			}
		}
	}

	m, ok := h.fetch(ctx, subreddit)
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"meme": fallbackMeme, "fallback": true})
		return
	}

	if h.cache != nil {
		h.cache.Set(utils.BuildMemeCacheKey(subreddit), m)
	}

	ctx.JSON(http.StatusOK, gin.H{"meme": m})
}

func (h *MemesHandler) allowed(subreddit string) bool {
	for _, s := range h.subreddits {
		if s == subreddit {
			return true
		}
	}

	return false
}

func (h *MemesHandler) fetch(ctx *gin.Context, subreddit string) (Meme, bool) {
	req, err := http.NewRequestWithContext(ctx.Request.Context(), http.MethodGet, memeAPIBase+subreddit, nil)
	if err != nil {
		return Meme{}, false
	}

	res, err := h.client.Do(req)
	if err != nil {
		return Meme{}, false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Meme{}, false
	}

	var m Meme
	if err := json.NewDecoder(res.Body).Decode(&m); err != nil {
		return Meme{}, false
	}

	if m.URL == "" || m.NSFW || containsBlockedWord(m.Title) {
		return Meme{}, false
	}

	return m, true
}

func containsBlockedWord(title string) bool {
	lowered := strings.ToLower(title)

	for _, w := range blockedWords {
		if strings.Contains(lowered, w) {
			return true
		}
	}

	return false
}
