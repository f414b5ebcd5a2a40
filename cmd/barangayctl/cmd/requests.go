package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"barangaylink/pkg/apiclient"

	"github.com/spf13/cobra"
)

var requestsCmd = &cobra.Command{
	Use:     "requests",
	Aliases: []string{"req"},
	Short:   "Service requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your requests, or every request with --all (staff)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		q := pageQuery(cmd)
		for _, f := range []string{"status", "category", "priority"} {
			if v, _ := cmd.Flags().GetString(f); v != "" {
				q.Filters.Set(f, v)
			}
		}

		list := a.services.Requests.Mine
		if all {
			list = a.services.Requests.List
		}
		page, err := list(cmd.Context(), q)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRIORITY\tSTATUS\tCREATED")
		for _, r := range page.Data {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Title, r.Category, r.Priority, r.Status, r.CreatedAt.Local().Format("2006-01-02"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPaging(cmd, page.Pagination)
		return nil
	},
}

var requestsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a service request",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}

		in := apiclient.ServiceRequestInput{}
		in.Title, _ = cmd.Flags().GetString("title")
		in.Description, _ = cmd.Flags().GetString("description")
		in.Category, _ = cmd.Flags().GetString("category")
		in.Location, _ = cmd.Flags().GetString("location")

		req, err := a.services.Requests.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Request #%d filed with %s priority\n", req.ID, req.Priority)
		return nil
	},
}

var requestsUploadCmd = &cobra.Command{
	Use:   "upload <request-id> <file>",
	Short: "Attach a file to a request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}

		upload := a.services.Requests.AttachFile(cmd.Context(), uint(id), apiclient.File{
			Name:    filepath.Base(args[1]),
			Content: f,
			Size:    info.Size(),
		})
		out := cmd.OutOrStdout()
		for pct := range upload.Progress() {
			fmt.Fprintf(out, "\ruploading %3d%%", pct)
		}
		fmt.Fprintln(out)

		resp, err := upload.Wait()
		if err != nil {
			return err
		}
		var req apiclient.ServiceRequest
		if err := resp.Decode(&req); err != nil {
			return err
		}
		fmt.Fprintf(out, "Request #%d now has %d attachment(s)\n", req.ID, len(req.Attachments))
		return nil
	},
}

func pageQuery(cmd *cobra.Command) apiclient.PageQuery {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	return apiclient.PageQuery{Page: page, Limit: limit, Filters: url.Values{}}
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("limit", 20, "items per page")
}

func printPaging(cmd *cobra.Command, p apiclient.Pagination) {
	if p.Pages > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d total)\n", p.Page, p.Pages, p.Total)
	}
}

func init() {
	addPageFlags(requestsListCmd)
	requestsListCmd.Flags().Bool("all", false, "list every request (staff only)")
	requestsListCmd.Flags().String("status", "", "PENDING, IN_PROGRESS, RESOLVED or REJECTED")
	requestsListCmd.Flags().String("category", "", "request category")
	requestsListCmd.Flags().String("priority", "", "URGENT, HIGH, MEDIUM or LOW")

	requestsCreateCmd.Flags().String("title", "", "short summary")
	requestsCreateCmd.Flags().String("description", "", "what you need")
	requestsCreateCmd.Flags().String("category", "OTHER", "EMERGENCY, MEDICAL, FOOD, DISASTER, INFRASTRUCTURE, EDUCATION, LEGAL, FINANCIAL or OTHER")
	requestsCreateCmd.Flags().String("location", "", "where help is needed")
	_ = requestsCreateCmd.MarkFlagRequired("title")
	_ = requestsCreateCmd.MarkFlagRequired("description")

	requestsCmd.AddCommand(requestsListCmd, requestsCreateCmd, requestsUploadCmd)
	rootCmd.AddCommand(requestsCmd)
}
