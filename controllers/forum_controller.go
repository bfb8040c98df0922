package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

// ForumController exposes the section/subsection/topic/post hierarchy.
type ForumController struct {
	forum    *services.ForumService
	accounts *services.AccountService
}

// NewForumController creates a new ForumController instance.
func NewForumController(db *gorm.DB) *ForumController {
	return &ForumController{
		forum:    services.NewForumService(db),
		accounts: services.NewAccountService(db),
	}
}

// ListSections returns all sections.
func (f *ForumController) ListSections(ctx *gin.Context) {
	sections, err := f.forum.ListSections()
	if err != nil {
		failService(ctx, err, 50030, "failed to list sections")
		return
	}
	utils.Success(ctx, gin.H{"sections": sections})
}

// CreateSection creates a section. Admins only.
func (f *ForumController) CreateSection(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	actor, ok := f.currentUser(ctx)
	if !ok {
		return
	}
	section, err := f.forum.CreateSection(actor, req.Name, req.Description)
	if err != nil {
		failService(ctx, err, 50031, "failed to create section")
		return
	}
	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"section": section})
}

// ListSubsections returns the subsections of a section.
func (f *ForumController) ListSubsections(ctx *gin.Context) {
	sectionID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid section id")
		return
	}
	subsections, err := f.forum.ListSubsections(sectionID)
	if err != nil {
		failService(ctx, err, 50032, "failed to list subsections")
		return
	}
	utils.Success(ctx, gin.H{"subsections": subsections})
}

// CreateSubsection creates a subsection under a section. Admins only.
func (f *ForumController) CreateSubsection(ctx *gin.Context) {
	sectionID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid section id")
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid request payload")
		return
	}
	actor, ok := f.currentUser(ctx)
	if !ok {
		return
	}
	subsection, err := f.forum.CreateSubsection(actor, sectionID, req.Name, req.Description)
	if err != nil {
		failService(ctx, err, 50033, "failed to create subsection")
		return
	}
	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"subsection": subsection})
}

// ListTopics returns the topics of a subsection.
func (f *ForumController) ListTopics(ctx *gin.Context) {
	subsectionID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid subsection id")
		return
	}
	topics, err := f.forum.ListTopics(subsectionID)
	if err != nil {
		failService(ctx, err, 50034, "failed to list topics")
		return
	}
	utils.Success(ctx, gin.H{"topics": topics})
}

// CreateTopic opens a topic in a subsection.
func (f *ForumController) CreateTopic(ctx *gin.Context) {
	subsectionID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid subsection id")
		return
	}
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid request payload")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}
	topic, err := f.forum.CreateTopic(subsectionID, userID, req.Title, req.Content)
	if err != nil {
		failService(ctx, err, 50035, "failed to create topic")
		return
	}
	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"topic": topic})
}

// GetTopic returns a topic together with its posts.
func (f *ForumController) GetTopic(ctx *gin.Context) {
	topicID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40037, "invalid topic id")
		return
	}
	topic, err := f.forum.GetTopic(topicID)
	if err != nil {
		failService(ctx, err, 50036, "failed to load topic")
		return
	}
	posts, err := f.forum.ListPosts(topicID)
	if err != nil {
		failService(ctx, err, 50037, "failed to load posts")
		return
	}
	utils.Success(ctx, gin.H{"topic": topic, "posts": posts})
}

// EditTopic updates a topic after the permission check.
func (f *ForumController) EditTopic(ctx *gin.Context) {
	topicID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40038, "invalid topic id")
		return
	}
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40039, "invalid request payload")
		return
	}
	actor, ok := f.currentUser(ctx)
	if !ok {
		return
	}
	topic, err := f.forum.EditTopic(topicID, actor, req.Title, req.Content)
	if err != nil {
		failService(ctx, err, 50038, "failed to edit topic")
		return
	}
	utils.Success(ctx, gin.H{"topic": topic})
}

// DeleteTopic removes a topic and its posts.
func (f *ForumController) DeleteTopic(ctx *gin.Context) {
	topicID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid topic id")
		return
	}
	actor, ok := f.currentUser(ctx)
	if !ok {
		return
	}
	if err := f.forum.DeleteTopic(topicID, actor); err != nil {
		failService(ctx, err, 50039, "failed to delete topic")
		return
	}
	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"message": "topic deleted"})
}

// CreatePost appends a post to a topic, optionally replying to a parent post.
func (f *ForumController) CreatePost(ctx *gin.Context) {
	topicID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid topic id")
		return
	}
	var req struct {
		Content      string `json:"content" binding:"required"`
		ParentPostID *uint  `json:"parent_post_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40131, "unauthorized")
		return
	}
	post, err := f.forum.CreatePost(topicID, userID, req.Content, req.ParentPostID)
	if err != nil {
		failService(ctx, err, 50040, "failed to create post")
		return
	}
	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post; replies keep their place with a cleared parent.
func (f *ForumController) DeletePost(ctx *gin.Context) {
	postID, ok := parseID(ctx, "postId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid post id")
		return
	}
	actor, ok := f.currentUser(ctx)
	if !ok {
		return
	}
	if err := f.forum.DeletePost(postID, actor); err != nil {
		failService(ctx, err, 50041, "failed to delete post")
		return
	}
	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// SetCurator assigns or clears the curator of a topic. Admins only.
func (f *ForumController) SetCurator(ctx *gin.Context) {
	topicID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid topic id")
		return
	}
	var req struct {
		CuratorID *uint `json:"curator_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid request payload")
		return
	}
	actor, ok := f.currentUser(ctx)
	if !ok {
		return
	}
	topic, err := f.forum.SetCurator(actor, topicID, req.CuratorID)
	if err != nil {
		failService(ctx, err, 50042, "failed to set curator")
		return
	}
	utils.Success(ctx, gin.H{"topic": topic})
}

func (f *ForumController) currentUser(ctx *gin.Context) (*models.User, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40132, "unauthorized")
		return nil, false
	}
	user, err := f.accounts.GetUser(userID)
	if err != nil {
		failService(ctx, err, 50043, "failed to load current user")
		return nil, false
	}
	return user, true
}
