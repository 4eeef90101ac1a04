package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sudhagarjb/oic-mcp/internal/insight"
	"github.com/sudhagarjb/oic-mcp/internal/listing"
	"github.com/sudhagarjb/oic-mcp/internal/oic"
)

// toolResult marshals a plain JSON value into a text tool result. Raw string
// payloads (non-JSON upstream responses) pass through unquoted.
func toolResult(value any) (*mcp.CallToolResult, error) {
	if s, ok := value.(string); ok {
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(s)}}, nil
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
}

func toolArgs(request mcp.CallToolRequest) map[string]any {
	if argsMap, ok := request.Params.Arguments.(map[string]any); ok {
		return argsMap
	}
	return map[string]any{}
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func argBool(args map[string]any, key string) (bool, bool) {
	b, ok := args[key].(bool)
	return b, ok
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func objectSchema(properties map[string]any, required ...string) mcp.ToolInputSchema {
	if required == nil {
		required = []string{}
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func intProp(description string, min, max int) map[string]any {
	prop := map[string]any{"type": "integer", "description": description}
	if min > 0 {
		prop["minimum"] = min
	}
	if max > 0 {
		prop["maximum"] = max
	}
	return prop
}

// registerTools wires every gateway tool onto the MCP server: the pass-through
// tools mirroring the upstream REST endpoints, then the search/summarization
// tools built on the document engine.
func registerTools(mcpServer *server.MCPServer, api *oic.Client, svc *insight.Service) {
	registerPassthroughTools(mcpServer, api)
	registerInsightTools(mcpServer, svc)
}

func registerPassthroughTools(mcpServer *server.MCPServer, api *oic.Client) {
	mcpServer.AddTool(mcp.Tool{
		Name:        "list_integrations",
		Description: "List integrations. Optional: onlyActivated, limit, page",
		InputSchema: objectSchema(map[string]any{
			"onlyActivated": boolProp("only include activated integrations"),
			"limit":         intProp("page size", 1, 1000),
			"page":          intProp("page number", 1, 0),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		var onlyActivated *bool
		if b, ok := argBool(args, "onlyActivated"); ok {
			onlyActivated = &b
		}
		out, err := api.ListIntegrations(ctx, onlyActivated, argInt(args, "limit"), argInt(args, "page"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "get_integration",
		Description: "Get an integration by identifier and version",
		InputSchema: objectSchema(map[string]any{
			"identifier": stringProp("integration code"),
			"version":    stringProp("integration version"),
		}, "identifier", "version"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := api.GetIntegration(ctx, argString(args, "identifier"), argString(args, "version"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_packages",
		Description: "List packages",
		InputSchema: objectSchema(map[string]any{
			"limit": intProp("page size", 1, 1000),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListPackages(ctx, argInt(toolArgs(request), "limit"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "get_package",
		Description: "Get a package by name",
		InputSchema: objectSchema(map[string]any{
			"name": stringProp("package name"),
		}, "name"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.GetPackage(ctx, argString(toolArgs(request), "name"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_connections",
		Description: "List connections",
		InputSchema: objectSchema(map[string]any{
			"limit": intProp("page size", 1, 1000),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListConnections(ctx, argInt(toolArgs(request), "limit"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "get_connection",
		Description: "Get a connection by identifier",
		InputSchema: objectSchema(map[string]any{
			"identifier": stringProp("connection identifier"),
		}, "identifier"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.GetConnection(ctx, argString(toolArgs(request), "identifier"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_activated_integrations",
		Description: "List only activated integrations",
		InputSchema: objectSchema(map[string]any{
			"limit": intProp("page size", 1, 1000),
			"page":  intProp("page number", 1, 0),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		activated := true
		out, err := api.ListIntegrations(ctx, &activated, argInt(args, "limit"), argInt(args, "page"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_schedules",
		Description: "List schedules",
		InputSchema: objectSchema(map[string]any{
			"limit": intProp("page size", 1, 1000),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListSchedules(ctx, argInt(toolArgs(request), "limit"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_instances",
		Description: "List runtime instances with filters",
		InputSchema: objectSchema(map[string]any{
			"integrationId": stringProp("filter by integration"),
			"status":        stringProp("filter by status"),
			"startTime":     stringProp("ISO-8601"),
			"endTime":       stringProp("ISO-8601"),
			"limit":         intProp("page size", 1, 1000),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := api.ListInstances(ctx, oic.InstanceFilter{
			IntegrationID: argString(args, "integrationId"),
			Status:        argString(args, "status"),
			StartTime:     argString(args, "startTime"),
			EndTime:       argString(args, "endTime"),
			Limit:         argInt(args, "limit"),
		})
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "get_instance",
		Description: "Get instance by ID",
		InputSchema: objectSchema(map[string]any{
			"instanceId": stringProp("runtime instance id"),
		}, "instanceId"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.GetInstance(ctx, argString(toolArgs(request), "instanceId"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_errors",
		Description: "List errors with optional filters",
		InputSchema: objectSchema(map[string]any{
			"integrationId": stringProp("filter by integration"),
			"limit":         intProp("page size", 1, 1000),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := api.ListErrors(ctx, argString(args, "integrationId"), argInt(args, "limit"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_lookups",
		Description: "List lookups",
		InputSchema: objectSchema(map[string]any{
			"limit": intProp("page size", 1, 1000),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListLookups(ctx, argInt(toolArgs(request), "limit"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_adapters",
		Description: "List available adapters",
		InputSchema: objectSchema(map[string]any{}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListAdapters(ctx)
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_agents",
		Description: "List connectivity agents",
		InputSchema: objectSchema(map[string]any{}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListAgents(ctx)
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_agent_groups",
		Description: "List connectivity agent groups",
		InputSchema: objectSchema(map[string]any{}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := api.ListAgentGroups(ctx)
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "list_metrics",
		Description: "List metrics by name and optional time range",
		InputSchema: objectSchema(map[string]any{
			"metric":    stringProp("metric name"),
			"startTime": stringProp("ISO-8601"),
			"endTime":   stringProp("ISO-8601"),
		}, "metric"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := api.ListMetrics(ctx, argString(args, "metric"), argString(args, "startTime"), argString(args, "endTime"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})
}

func registerInsightTools(mcpServer *server.MCPServer, svc *insight.Service) {
	mcpServer.AddTool(mcp.Tool{
		Name:        "list_all_integrations",
		Description: "Aggregate every integrations listing page into one deduplicated result set",
		InputSchema: objectSchema(map[string]any{
			"onlyActivated": boolProp("only include activated integrations"),
			"perPage":       intProp("items requested per page", 1, 1000),
			"maxPages":      intProp("hard page ceiling", 1, 200),
		}),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		var onlyActivated *bool
		if b, ok := argBool(args, "onlyActivated"); ok {
			onlyActivated = &b
		}
		return toolResult(svc.ListAllIntegrations(ctx, onlyActivated, argInt(args, "perPage"), argInt(args, "maxPages")))
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "search_integrations",
		Description: "Search the integrations listing by substring terms across configurable fields",
		InputSchema: objectSchema(map[string]any{
			"terms": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "substrings to look for; empty yields an empty result",
			},
			"fields": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "item fields to scan (default code, name, description)",
			},
			"caseSensitive": boolProp("match case-sensitively"),
			"perPage":       intProp("items requested per page", 1, 1000),
			"maxPages":      intProp("hard page ceiling", 1, 200),
		}, "terms"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		caseSensitive, _ := argBool(args, "caseSensitive")
		return toolResult(svc.SearchIntegrations(ctx, listing.SearchOptions{
			Terms:         argStrings(args, "terms"),
			Fields:        argStrings(args, "fields"),
			CaseSensitive: caseSensitive,
			PerPage:       argInt(args, "perPage"),
			MaxPages:      argInt(args, "maxPages"),
		}))
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "describe_integration",
		Description: "Summarize an integration version: step outline, control-flow tallies and endpoint roster. Version is resolved from the listing when omitted.",
		InputSchema: objectSchema(map[string]any{
			"code":     stringProp("integration code"),
			"version":  stringProp("integration version (optional, resolved when omitted)"),
			"maxLines": intProp("outline line cap", 1, 0),
		}, "code"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := svc.DescribeIntegration(ctx, argString(args, "code"), argString(args, "version"), argInt(args, "maxLines"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "find_integration_step",
		Description: "Locate a named step inside an integration's design document and extract SQL/binding evidence from each match",
		InputSchema: objectSchema(map[string]any{
			"code":        stringProp("integration code"),
			"step":        stringProp("step name; exact match first, substring fallback"),
			"version":     stringProp("integration version (optional)"),
			"maxMatches":  intProp("match cap", 1, 200),
			"maxSnippets": intProp("text-evidence cap per match", 1, 0),
		}, "code", "step"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := svc.FindStep(ctx,
			argString(args, "code"), argString(args, "version"), argString(args, "step"),
			argInt(args, "maxMatches"), argInt(args, "maxSnippets"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "get_integration_endpoints",
		Description: "List an integration's endpoints, optionally filtered by role (source/target)",
		InputSchema: objectSchema(map[string]any{
			"code":    stringProp("integration code"),
			"version": stringProp("integration version (optional)"),
			"role":    stringProp("endpoint role filter, e.g. source or target"),
		}, "code"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := svc.IntegrationEndpoints(ctx, argString(args, "code"), argString(args, "version"), argString(args, "role"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})

	mcpServer.AddTool(mcp.Tool{
		Name:        "query_integration",
		Description: "Evaluate a JSONPath expression against an integration's design document",
		InputSchema: objectSchema(map[string]any{
			"code":       stringProp("integration code"),
			"query":      stringProp("JSONPath expression, e.g. $..connection.id"),
			"version":    stringProp("integration version (optional)"),
			"maxResults": intProp("result cap", 1, 0),
		}, "code", "query"),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(request)
		out, err := svc.QueryIntegration(ctx,
			argString(args, "code"), argString(args, "version"), argString(args, "query"),
			argInt(args, "maxResults"))
		if err != nil {
			return nil, err
		}
		return toolResult(out)
	})
}
