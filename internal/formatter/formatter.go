package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/tidwall/gjson"

	"github.com/hjanuschka/projectwise-mcp/internal/token"
)

var (
	idColor     = color.New(color.FgCyan)
	classColor  = color.New(color.FgYellow)
	nameColor   = color.New(color.FgGreen, color.Bold)
	headerColor = color.New(color.FgMagenta, color.Bold)
	warnColor   = color.New(color.FgRed, color.Bold)
	okColor     = color.New(color.FgGreen)
)

// Instance is the part of a WSG instance the CLI shows.
type Instance struct {
	ID          string
	Class       string
	Name        string
	Description string
	Updated     string
}

// Instances picks the instance rows out of a WSG response body. The second
// result is false when the body is not an instance list.
func Instances(body []byte) ([]Instance, bool) {
	list := gjson.GetBytes(body, "instances")
	if !list.IsArray() {
		return nil, false
	}
	var out []Instance
	list.ForEach(func(_, v gjson.Result) bool {
		name := v.Get("properties.Name").String()
		if name == "" {
			name = v.Get("properties.Label").String()
		}
		out = append(out, Instance{
			ID:          v.Get("instanceId").String(),
			Class:       v.Get("className").String(),
			Name:        name,
			Description: v.Get("properties.Description").String(),
			Updated:     v.Get("properties.UpdateTime").String(),
		})
		return true
	})
	return out, true
}

// PrintJSON writes result as indented JSON.
func PrintJSON(w io.Writer, result any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Instance list formatting
func PrintInstancesTable(w io.Writer, title string, result any) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	instances, ok := Instances(body)
	if !ok {
		fmt.Fprintf(w, "\n%s\n", headerColor.Sprint(title))
		return PrintJSON(w, result)
	}

	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint(title))
	fmt.Fprintf(w, "Found %d items\n\n", len(instances))
	if len(instances) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Class", "ID", "Updated"})
	table.SetAutoWrapText(false)
	table.SetRowLine(true)

	for _, inst := range instances {
		table.Append([]string{
			nameColor.Sprint(inst.Name),
			classColor.Sprint(inst.Class),
			idColor.Sprint(inst.ID),
			inst.Updated,
		})
	}

	table.Render()
	return nil
}

func PrintInstancesPlain(w io.Writer, title string, result any) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	instances, ok := Instances(body)
	if !ok {
		return PrintJSON(w, result)
	}

	fmt.Fprintf(w, "%s\n", title)
	for _, inst := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\n", inst.ID, inst.Class, strings.TrimSpace(inst.Name))
	}
	return nil
}

// Token status formatting
func PrintTokenStatus(w io.Writer, location string, rec *token.Record, now time.Time) {
	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint("Stored ProjectWise token"))

	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetColumnSeparator(":")

	table.Append([]string{"Location", location})
	table.Append([]string{"Source key", rec.SourceKey})
	table.Append([]string{"Type", rec.TokenType})
	table.Append([]string{"Fetched", time.Unix(rec.FetchedAt, 0).Format(time.RFC3339)})

	if at, ok := rec.Expiry(); ok {
		status := okColor.Sprintf("valid for %s", at.Sub(now).Round(time.Second))
		if rec.Expired(now) {
			status = warnColor.Sprint("EXPIRED")
		}
		table.Append([]string{"Expires", at.Format(time.RFC3339) + " (" + status + ")"})
	} else {
		table.Append([]string{"Expires", "unknown"})
	}

	if claims, err := rec.Claims(); err == nil {
		for _, key := range []string{"sub", "email", "aud", "iss"} {
			if v, ok := claims[key]; ok {
				table.Append([]string{"Claim " + key, fmt.Sprint(v)})
			}
		}
	}

	table.Render()
}

// Storage key formatting
func PrintCandidatesTable(w io.Writer, candidates []token.Candidate) {
	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint("Credential storage keys"))
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No oidc/token/user/auth keys found. Is the login complete?")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Area", "Access token", "ID token", "Expires"})
	table.SetAutoWrapText(false)

	for _, c := range candidates {
		access := "no"
		if c.AccessToken {
			access = okColor.Sprint("yes")
		}
		id := "no"
		if c.IDToken {
			id = "yes"
		}
		expires := ""
		if c.ExpiresAt != nil {
			expires = time.Unix(*c.ExpiresAt, 0).Format(time.RFC3339)
		}
		table.Append([]string{nameColor.Sprint(c.Key), c.Area, access, id, expires})
	}
	table.Render()
}

func PrintCandidatesPlain(w io.Writer, candidates []token.Candidate) {
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%s\t%t\n", c.Area, c.Key, c.AccessToken)
	}
}
