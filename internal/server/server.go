// Package server exposes the ProjectWise WSG client as MCP tools.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hjanuschka/projectwise-mcp/internal/logging"
)

const (
	Name    = "projectwise-mcp"
	Version = "1.0.0"
)

// Repository is the subset of the WSG client the tools call.
type Repository interface {
	ListFolders(ctx context.Context, parentID string) (any, error)
	ListDocuments(ctx context.Context, folderID string) (any, error)
	GetDocument(ctx context.Context, documentID string) (any, error)
	GetFolder(ctx context.Context, folderID string) (any, error)
	SearchDocuments(ctx context.Context, pattern string, maxResults int) (any, error)
	ListProjects(ctx context.Context) (any, error)
	GetRepository(ctx context.Context) (any, error)
}

type ProjectWiseServer struct {
	server *mcp.Server
	repo   Repository
	logger *logging.Logger
}

func New(repo Repository, logger *logging.Logger) *ProjectWiseServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: "Browse and search folders, documents and projects in a Bentley ProjectWise repository via the WSG REST API",
	})

	ps := &ProjectWiseServer{server: server, repo: repo, logger: logger}
	ps.registerTools()
	return ps
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the client disconnects.
func (ps *ProjectWiseServer) Run(ctx context.Context) error {
	return ps.server.Run(ctx, mcp.NewStdioTransport())
}

// MCP returns the underlying server, e.g. to attach another transport.
func (ps *ProjectWiseServer) MCP() *mcp.Server {
	return ps.server
}

type ListFoldersArgs struct {
	ParentID string `json:"parentId,omitempty" mcp:"Parent folder GUID (omit for root folders)"`
}

type ListDocumentsArgs struct {
	FolderID string `json:"folderId" mcp:"Folder GUID to list documents from"`
}

type GetDocumentArgs struct {
	DocumentID string `json:"documentId" mcp:"Document GUID"`
}

type SearchDocumentsArgs struct {
	NamePattern string `json:"namePattern" mcp:"Search pattern (partial name match)"`
	MaxResults  int    `json:"maxResults,omitempty" mcp:"Maximum results to return (default 50)"`
}

type GetFolderArgs struct {
	FolderID string `json:"folderId" mcp:"Folder GUID"`
}

type NoArgs struct{}

type toolResult = mcp.CallToolResultFor[struct{}]

func (ps *ProjectWiseServer) registerTools() {
	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "list_folders",
		Description: "List folders in ProjectWise. If parentId is omitted, lists root folders.",
	}, ps.listFolders)

	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List documents in a ProjectWise folder.",
	}, ps.listDocuments)

	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get metadata for a specific document in ProjectWise.",
	}, ps.getDocument)

	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search for documents by name pattern in ProjectWise.",
	}, ps.searchDocuments)

	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "get_folder",
		Description: "Get metadata for a specific folder in ProjectWise.",
	}, ps.getFolder)

	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List all projects in the ProjectWise repository.",
	}, ps.listProjects)

	mcp.AddTool(ps.server, &mcp.Tool{
		Name:        "get_repository_info",
		Description: "Get information about the connected ProjectWise repository.",
	}, ps.getRepositoryInfo)
}

func (ps *ProjectWiseServer) listFolders(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ListFoldersArgs]) (*toolResult, error) {
	parentID := params.Arguments.ParentID
	ps.logger.Info("Listing folders", "parentId", parentID)
	result, err := ps.repo.ListFolders(ctx, parentID)
	return ps.respond("listing folders", result, err)
}

func (ps *ProjectWiseServer) listDocuments(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ListDocumentsArgs]) (*toolResult, error) {
	folderID := params.Arguments.FolderID
	ps.logger.Info("Listing documents", "folderId", folderID)
	if folderID == "" {
		return ps.respond("listing documents", nil, errMissing("folderId"))
	}
	result, err := ps.repo.ListDocuments(ctx, folderID)
	return ps.respond("listing documents", result, err)
}

func (ps *ProjectWiseServer) getDocument(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[GetDocumentArgs]) (*toolResult, error) {
	documentID := params.Arguments.DocumentID
	ps.logger.Info("Getting document", "documentId", documentID)
	if documentID == "" {
		return ps.respond("getting document", nil, errMissing("documentId"))
	}
	result, err := ps.repo.GetDocument(ctx, documentID)
	return ps.respond("getting document", result, err)
}

func (ps *ProjectWiseServer) searchDocuments(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[SearchDocumentsArgs]) (*toolResult, error) {
	args := params.Arguments
	ps.logger.Info("Searching documents", "namePattern", args.NamePattern, "maxResults", args.MaxResults)
	result, err := ps.repo.SearchDocuments(ctx, args.NamePattern, args.MaxResults)
	return ps.respond("searching documents", result, err)
}

func (ps *ProjectWiseServer) getFolder(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[GetFolderArgs]) (*toolResult, error) {
	folderID := params.Arguments.FolderID
	ps.logger.Info("Getting folder", "folderId", folderID)
	if folderID == "" {
		return ps.respond("getting folder", nil, errMissing("folderId"))
	}
	result, err := ps.repo.GetFolder(ctx, folderID)
	return ps.respond("getting folder", result, err)
}

func (ps *ProjectWiseServer) listProjects(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[NoArgs]) (*toolResult, error) {
	ps.logger.Info("Listing projects")
	result, err := ps.repo.ListProjects(ctx)
	return ps.respond("listing projects", result, err)
}

func (ps *ProjectWiseServer) getRepositoryInfo(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[NoArgs]) (*toolResult, error) {
	ps.logger.Info("Getting repository info")
	result, err := ps.repo.GetRepository(ctx)
	return ps.respond("getting repository info", result, err)
}

// respond turns a client result into a tool result. Failures become error
// results rather than protocol errors so the caller sees the message.
func (ps *ProjectWiseServer) respond(action string, result any, err error) (*toolResult, error) {
	if err != nil {
		ps.logger.Error("Failed "+action, "error", err)
		return errorResult(fmt.Sprintf("Error %s: %v", action, err)), nil
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		ps.logger.Error("Failed to encode result", "action", action, "error", err)
		return errorResult(fmt.Sprintf("Error %s: failed to encode response: %v", action, err)), nil
	}
	return &toolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
	}, nil
}

func errorResult(text string) *toolResult {
	return &toolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func errMissing(param string) error {
	return fmt.Errorf("%s is required", param)
}
