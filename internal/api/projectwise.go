package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	collectionProject  = "Project"
	collectionDocument = "Document"

	// DefaultSearchLimit caps search results when the caller gives no limit.
	DefaultSearchLimit = 50
)

// checkID rejects dot segments, which url.PathEscape leaves as is and path
// joining would resolve away.
func checkID(id string) error {
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (c *Client) instancePath(collection, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	return c.collectionPath(collection) + "/" + url.PathEscape(id), nil
}

func (c *Client) collectionPath(collection string) string {
	return c.repoPath + "/PW_WSG/" + collection
}

func filterQuery(f Filter) url.Values {
	return url.Values{"$filter": {string(f)}}
}

// FolderFilter selects folders under parentID, or root folders when parentID is empty.
func FolderFilter(parentID string) Filter {
	parent := IsNull("ParentGuid")
	if parentID != "" {
		parent = Eq("ParentGuid", parentID)
	}
	return And(Filter("TypeString eq 'Folder'"), parent)
}

// GetRepository returns the repository metadata.
func (c *Client) GetRepository(ctx context.Context) (any, error) {
	return c.Get(ctx, c.repoPath, nil)
}

// ListFolders lists folders under parentID, or the root folders when it is empty.
func (c *Client) ListFolders(ctx context.Context, parentID string) (any, error) {
	return c.Get(ctx, c.collectionPath(collectionProject), filterQuery(FolderFilter(parentID)))
}

// ListDocuments lists documents directly inside folderID.
func (c *Client) ListDocuments(ctx context.Context, folderID string) (any, error) {
	return c.Get(ctx, c.collectionPath(collectionDocument), filterQuery(Eq("ParentGuid", folderID)))
}

// GetDocument returns metadata for one document.
func (c *Client) GetDocument(ctx context.Context, documentID string) (any, error) {
	p, err := c.instancePath(collectionDocument, documentID)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, p, nil)
}

// GetFolder returns metadata for one folder.
func (c *Client) GetFolder(ctx context.Context, folderID string) (any, error) {
	p, err := c.instancePath(collectionProject, folderID)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, p, nil)
}

// SearchDocuments finds documents whose name contains pattern. A maxResults
// of zero or less means DefaultSearchLimit.
func (c *Client) SearchDocuments(ctx context.Context, pattern string, maxResults int) (any, error) {
	if maxResults <= 0 {
		maxResults = DefaultSearchLimit
	}
	q := filterQuery(Contains("Name", pattern))
	q.Set("$top", strconv.Itoa(maxResults))
	return c.Get(ctx, c.collectionPath(collectionDocument), q)
}

// ListProjects lists every project in the repository.
func (c *Client) ListProjects(ctx context.Context) (any, error) {
	return c.Get(ctx, c.collectionPath(collectionProject), nil)
}
