package mcp

import (
	"context"
	"encoding/json"

	"archive-browser/cache"
	"archive-browser/listing"
	"archive-browser/models"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

var validate = validator.New()

func InitTools(c *cache.Cache) []server.ServerTool {
	return []server.ServerTool{
		newServerTool(ListArchivedURLs(c)),
		newServerTool(GetArchivedURL(c)),
		newServerTool(GetSnapshot(c)),
		newServerTool(CacheStats(c)),
	}
}

func ListArchivedURLs(c *cache.Cache) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"list_archived_urls",
			mcp.WithDescription("List archived URLs with their capture counts, one page at a time"),
			mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
			mcp.WithNumber("limit", mcp.Description("Page size between 1 and 100 (default 50)")),
			mcp.WithString("sort", mcp.Description("Sort order: url, last_captured or snapshot_count (default url)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Page  int    `mapstructure:"page" validate:"min=1"`
				Limit int    `mapstructure:"limit" validate:"min=1,max=100"`
				Sort  string `mapstructure:"sort" validate:"oneof=url last_captured snapshot_count"`
			}
			args := ToolArguments{Page: 1, Limit: listing.DefaultLimit, Sort: string(listing.SortByURL)}
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			catalog, err := c.Get(ctx)
			if err != nil {
				return toolError(err), nil
			}
			page, err := listing.List(catalog, listing.SortKey(args.Sort), args.Page, args.Limit)
			if err != nil {
				return toolError(err), nil
			}

			return jsonResult(models.PaginatedResponse[models.URLSummary]{
				Success:    true,
				Data:       lo.Map(page.Items, func(r *models.Resource, _ int) models.URLSummary { return models.NewURLSummary(r) }),
				Pagination: page.Meta,
			})
		}
}

func GetArchivedURL(c *cache.Cache) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"get_archived_url",
			mcp.WithDescription("Get one archived URL and all of its snapshots, newest first"),
			mcp.WithString("url_id", mcp.Required(), mcp.Description("Archived URL id, e.g. example_com_home_page")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				URLID string `mapstructure:"url_id" validate:"required"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			resource, err := c.Resource(ctx, args.URLID)
			if err != nil {
				return toolError(err), nil
			}
			if resource == nil {
				return mcp.NewToolResultError("Archived URL '" + args.URLID + "' not found"), nil
			}

			return jsonResult(models.ResourceDetail{
				URLSummary: models.NewURLSummary(resource),
				Snapshots:  lo.Map(resource.Captures, func(cp *models.Capture, _ int) models.CaptureDetail { return models.NewCaptureDetail(cp) }),
			})
		}
}

func GetSnapshot(c *cache.Cache) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"get_snapshot",
			mcp.WithDescription("Get one snapshot with its metadata and available artifacts"),
			mcp.WithString("snapshot_id", mcp.Required(), mcp.Description("Snapshot directory name, e.g. req_abc_20240315_143022")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				SnapshotID string `mapstructure:"snapshot_id" validate:"required"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			capture, err := c.Capture(ctx, args.SnapshotID)
			if err != nil {
				return toolError(err), nil
			}
			if capture == nil {
				return mcp.NewToolResultError("Snapshot '" + args.SnapshotID + "' not found"), nil
			}
			return jsonResult(models.NewCaptureDetail(capture))
		}
}

func CacheStats(c *cache.Cache) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"cache_stats",
			mcp.WithDescription("Report the age and size of the archive catalog cache"),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(c.Stats())
		}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError prefers the user-facing failure message over the full chain.
func toolError(err error) *mcp.CallToolResult {
	if m := failure.MessageOf(err); m != "" {
		return mcp.NewToolResultError(m.String())
	}
	return mcp.NewToolResultError(err.Error())
}
