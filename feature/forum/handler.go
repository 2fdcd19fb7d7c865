package forum

import (
	"strings"

	"forum-indexer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the forum model.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the forum routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/forum")
	group.Post("/events", h.HandleIngestEvent)
	group.Get("/posts/:id", h.HandleGetPost)
	group.Get("/posts/:id/replies", h.HandleGetPostReplies)
	group.Get("/communities/:id", h.HandleGetCommunity)
	group.Get("/communities/:id/posts", h.HandleGetCommunityPosts)
	group.Get("/users/:address", h.HandleGetUser)
	group.Get("/history/tx/:hash", h.HandleGetTransactionHistory)
	group.Get("/history/entity/:id", h.HandleGetEntityHistory)
}

// HandleIngestEvent processes one ledger event envelope.
// @Summary Ingest Event
// @Description Process one ledger event envelope against the derived model.
// @Tags forum
// @Accept json
// @Produce json
// @Param envelope body Envelope true "Event Envelope"
// @Success 204 "Processed"
// @Failure 400 {object} map[string]string "Malformed Envelope"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /forum/events [post]
func (h *Handler) HandleIngestEvent(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var env Envelope
	if err := c.BodyParser(&env); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.service.Ingest(c.Context(), env); err != nil {
		l.Error("event ingestion failed",
			zap.String("event", env.Event),
			zap.String("tx", env.Hash),
			zap.Error(err),
		)
		status := fiber.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown event") || strings.Contains(err.Error(), "invalid") {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetPost returns one post.
// @Summary Get Post
// @Tags forum
// @Produce json
// @Param id path string true "Post Key (e.g. '1-42')"
// @Success 200 {object} models.Post "Post"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /forum/posts/{id} [get]
func (h *Handler) HandleGetPost(c *fiber.Ctx) error {
	post, err := h.service.GetPost(c.Context(), c.Params("id"))
	if err != nil {
		return h.internalError(c, err)
	}
	if post == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
	}
	return c.JSON(post)
}

// HandleGetPostReplies returns the replies of a post in ledger order.
// @Summary Get Post Replies
// @Tags forum
// @Produce json
// @Param id path string true "Post Key"
// @Success 200 {array} models.Reply "Replies"
// @Router /forum/posts/{id}/replies [get]
func (h *Handler) HandleGetPostReplies(c *fiber.Ctx) error {
	replies, err := h.service.GetPostReplies(c.Context(), c.Params("id"))
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(replies)
}

// HandleGetCommunity returns one community.
// @Summary Get Community
// @Tags forum
// @Produce json
// @Param id path string true "Community Key"
// @Success 200 {object} models.Community "Community"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /forum/communities/{id} [get]
func (h *Handler) HandleGetCommunity(c *fiber.Ctx) error {
	community, err := h.service.GetCommunity(c.Context(), c.Params("id"))
	if err != nil {
		return h.internalError(c, err)
	}
	if community == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "community not found"})
	}
	return c.JSON(community)
}

// HandleGetCommunityPosts returns the posts of a community.
// @Summary Get Community Posts
// @Tags forum
// @Produce json
// @Param id path string true "Community Key"
// @Success 200 {array} models.Post "Posts"
// @Router /forum/communities/{id}/posts [get]
func (h *Handler) HandleGetCommunityPosts(c *fiber.Ctx) error {
	posts, err := h.service.GetCommunityPosts(c.Context(), c.Params("id"))
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(posts)
}

// HandleGetUser returns one user by address.
// @Summary Get User
// @Tags forum
// @Produce json
// @Param address path string true "Ledger Address"
// @Success 200 {object} models.User "User"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /forum/users/{address} [get]
func (h *Handler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.Context(), strings.ToLower(c.Params("address")))
	if err != nil {
		return h.internalError(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(user)
}

// HandleGetTransactionHistory returns the audit records of a transaction.
// @Summary Get Transaction History
// @Tags forum
// @Produce json
// @Param hash path string true "Transaction Hash"
// @Success 200 {array} models.HistoryEntry "Audit Records"
// @Router /forum/history/tx/{hash} [get]
func (h *Handler) HandleGetTransactionHistory(c *fiber.Ctx) error {
	entries, err := h.service.GetTransactionHistory(c.Context(), c.Params("hash"))
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(entries)
}

// HandleGetEntityHistory returns the audit records touching an entity.
// @Summary Get Entity History
// @Tags forum
// @Produce json
// @Param id path string true "Entity Key"
// @Success 200 {array} models.HistoryEntry "Audit Records"
// @Router /forum/history/entity/{id} [get]
func (h *Handler) HandleGetEntityHistory(c *fiber.Ctx) error {
	entries, err := h.service.GetEntityHistory(c.Context(), c.Params("id"))
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(entries)
}

func (h *Handler) internalError(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Error("forum query failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
