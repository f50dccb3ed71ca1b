// CLAUDE:SUMMARY Registers all domfill MCP tools — render, preview, template CRUD, stats.
package fill

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domfill/kit"
)

// RegisterMCP registers fill tools on an MCP server.
func (f *Filler) RegisterMCP(srv *mcp.Server) {
	f.registerRenderTool(srv)
	f.registerPreviewTool(srv)
	f.registerTemplatePutTool(srv)
	f.registerTemplateGetTool(srv)
	f.registerTemplateListTool(srv)
	f.registerTemplateDeleteTool(srv)
	f.registerStatsTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- render ---

func (f *Filler) registerRenderTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_render",
		Description: "Render micro-data into an HTML fragment. Give either a stored template name or inline fragment markup.",
		InputSchema: inputSchema(map[string]any{
			"template": map[string]any{"type": "string", "description": "Stored template name"},
			"fragment": map[string]any{"type": "string", "description": "Inline template markup (mutually exclusive with template)"},
			"data":     map[string]any{"description": "Micro-data to render: a JSON string, array, or typed object"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*renderRequest)
		if r.Template != "" {
			return f.Render(ctx, r.Template, r.Data)
		}
		return f.RenderFragment(ctx, r.Fragment, r.Data)
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r renderRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if err := r.validate(); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- preview ---

func (f *Filler) registerPreviewTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_preview",
		Description: "Render micro-data and convert the result to markdown, for text-only display.",
		InputSchema: inputSchema(map[string]any{
			"template": map[string]any{"type": "string", "description": "Stored template name"},
			"fragment": map[string]any{"type": "string", "description": "Inline template markup (mutually exclusive with template)"},
			"data":     map[string]any{"description": "Micro-data to render: a JSON string, array, or typed object"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*renderRequest)
		if r.Template != "" {
			return f.Preview(ctx, r.Template, r.Data)
		}
		return f.PreviewFragment(ctx, r.Fragment, r.Data)
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r renderRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if err := r.validate(); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- template_put ---

type templatePutRequest struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

func (f *Filler) registerTemplatePutTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_template_put",
		Description: "Store (or replace) a named template. The markup must contain at least one element.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Template name"},
			"html": map[string]any{"type": "string", "description": "Template markup"},
		}, []string{"name", "html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*templatePutRequest)
		if err := f.PutTemplate(ctx, r.Name, r.HTML); err != nil {
			return nil, err
		}
		return map[string]string{"status": "stored", "name": r.Name}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r templatePutRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- template_get ---

type templateNameRequest struct {
	Name string `json:"name"`
}

func (f *Filler) registerTemplateGetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_template_get",
		Description: "Get a stored template by name, including its markup.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Template name"},
		}, []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*templateNameRequest)
		return f.Template(ctx, r.Name)
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r templateNameRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- template_list ---

func (f *Filler) registerTemplateListTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_template_list",
		Description: "List all stored templates with their markup.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return f.Templates(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (any, error) {
		return nil, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- template_delete ---

func (f *Filler) registerTemplateDeleteTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_template_delete",
		Description: "Delete a stored template.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Template name"},
		}, []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*templateNameRequest)
		if err := f.DeleteTemplate(ctx, r.Name); err != nil {
			return nil, err
		}
		return map[string]string{"status": "deleted", "name": r.Name}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r templateNameRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- stats ---

func (f *Filler) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "fill_stats",
		Description: "Get domfill statistics: template count, render counters, cache and watcher state.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return f.Stats(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (any, error) {
		return nil, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
