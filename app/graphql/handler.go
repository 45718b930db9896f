package graphql

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	gql "github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "graphql").Logger()

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler serves the schema on a single POST endpoint.
type Handler struct {
	schema gql.Schema
}

func NewHandler(schema gql.Schema) *Handler {
	return &Handler{schema: schema}
}

func (h *Handler) HandleQuery(c *gin.Context) {
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": "malformed request body"}},
		})
		return
	}

	result := gql.Do(gql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request.Context(),
	})
	if len(result.Errors) > 0 {
		logger.Warn().Str("operation", req.OperationName).Interface("errors", result.Errors).Msg("query resolved with errors")
	}

	c.JSON(http.StatusOK, result)
}
