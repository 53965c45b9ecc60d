package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deephealth-lab/community/internal/cache"
	"github.com/deephealth-lab/community/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type CommunityHandler struct {
	db    *gorm.DB
	cache *cache.FeedCache
}

func NewCommunityHandler(db *gorm.DB, feedCache *cache.FeedCache) *CommunityHandler {
	return &CommunityHandler{db: db, cache: feedCache}
}

// loadReactions fills the Likes/Dislikes arrays and the comment count; the
// full comment list is attached only for detail responses.
func (h *CommunityHandler) loadReactions(post *models.Post, withComments bool) error {
	var reactions []models.Reaction
	if err := h.db.Where("post_id = ?", post.ID).Find(&reactions).Error; err != nil {
		return err
	}

	post.Likes = []string{}
	post.Dislikes = []string{}
	for _, r := range reactions {
		if r.Value == models.ReactionLike {
			post.Likes = append(post.Likes, r.UserID)
		} else {
			post.Dislikes = append(post.Dislikes, r.UserID)
		}
	}

	var count int64
	if err := h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		return err
	}
	post.CommentsCount = int(count)

	if withComments {
		if err := h.db.Where("post_id = ?", post.ID).Order("created_at asc").Find(&post.Comments).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetFeed returns one page of the community feed
func (h *CommunityHandler) GetFeed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	sortMode := c.DefaultQuery("sort", "latest")
	filterMode := c.DefaultQuery("filter", "all")

	// Shared pages (the "all" filter) are cache candidates; "mine" pages
	// differ per caller.
	cacheable := filterMode == "all"
	if cacheable {
		if fp, ok := h.cache.GetPage(c.Request.Context(), sortMode, filterMode, page, pageSize); ok {
			c.JSON(http.StatusOK, fp)
			return
		}
	}

	query := h.db.Model(&models.Post{})
	if filterMode == "mine" {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		query = query.Where("author_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	switch sortMode {
	case "popular":
		query = query.
			Select("posts.*").
			Joins("LEFT JOIN reactions ON reactions.post_id = posts.id AND reactions.value = ?", models.ReactionLike).
			Group("posts.id").
			Order("COUNT(reactions.id) DESC, posts.created_at DESC")
	default:
		query = query.Order("created_at desc")
	}

	var posts []models.Post
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	for i := range posts {
		if err := h.loadReactions(&posts[i], false); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
			return
		}
	}

	// If no posts, return empty array not null
	if posts == nil {
		posts = []models.Post{}
	}

	fp := models.FeedPage{
		Items: posts,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(pageSize))),
		Total: total,
	}

	if cacheable {
		h.cache.SetPage(c.Request.Context(), sortMode, filterMode, page, pageSize, fp)
	}

	c.JSON(http.StatusOK, fp)
}

// GetPost returns a single post with its full comment list
func (h *CommunityHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := h.loadReactions(&post, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost publishes a new community post (PROTECTED)
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	post := models.Post{
		AuthorID:    userID,
		AuthorName:  c.GetString("full_name"),
		AuthorEmail: c.GetString("email"),
		Content:     input.Content,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	h.cache.Invalidate(c.Request.Context())

	if err := h.loadReactions(&post, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ToggleLike — one reaction per user, toggles off if same, switches if opposite
func (h *CommunityHandler) ToggleLike(c *gin.Context) {
	h.react(c, models.ReactionLike)
}

// ToggleDislike — symmetric to ToggleLike
func (h *CommunityHandler) ToggleDislike(c *gin.Context) {
	h.react(c, models.ReactionDislike)
}

func (h *CommunityHandler) react(c *gin.Context, value int) {
	postID := c.Param("id")

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existing models.Reaction
	err := h.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error

	if err == nil {
		if existing.Value == value {
			// Same reaction — toggle off
			h.db.Delete(&existing)
		} else {
			// Opposite reaction — switch sides
			existing.Value = value
			h.db.Save(&existing)
		}
	} else {
		reaction := models.Reaction{UserID: userID, PostID: post.ID, Value: value}
		if err := h.db.Create(&reaction).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record reaction"})
			return
		}
	}

	h.cache.Invalidate(c.Request.Context())

	// Return the full authoritative post; the client overwrites its copy
	// with this.
	if err := h.loadReactions(&post, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreateComment adds a comment (or a reply) and returns the whole updated post
func (h *CommunityHandler) CreateComment(c *gin.Context) {
	postID := c.Param("id")

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Verify post exists
	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// A reply must point at a comment on the same post
	if input.ParentID != nil {
		var parent models.Comment
		if err := h.db.First(&parent, "id = ?", *input.ParentID).Error; err != nil || parent.PostID != post.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found on this post"})
			return
		}
	}

	comment := models.Comment{
		PostID:     post.ID,
		ParentID:   input.ParentID,
		AuthorID:   userID,
		AuthorName: c.GetString("full_name"),
		Content:    input.Content,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.cache.Invalidate(c.Request.Context())

	// The server owns ordering and counts; hand back the whole post
	if err := h.loadReactions(&post, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	c.JSON(http.StatusCreated, post)
}
