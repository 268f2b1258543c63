package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/core/domain"
)

var (
	documentListScope string
	documentListPath  string
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, view, or delete indexed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in a scope",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [document-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its index entries",
	Long: `Removes a document, its chunks, and its vector and keyword index
entries. The document no longer appears in any subsequent search.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentDelete,
}

func init() {
	documentListCmd.Flags().StringVarP(&documentListScope, "scope", "s", "", "scope to list (required)")
	documentListCmd.Flags().StringVar(&documentListPath, "path", "", "restrict to documents under this path prefix")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if documentListScope == "" {
		return errors.New("--scope is required")
	}

	docs, err := documentService.List(cmd.Context(), documentListScope, documentListPath)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found in scope: %s\n", documentListScope)
		return nil
	}

	cmd.Printf("Documents in scope %s:\n\n", documentListScope)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Path:   %s\n", docs[i].Path)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found", args[0])
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Scope:    %s\n", doc.ScopeID)
	cmd.Printf("  Path:     %s\n", doc.Path)
	cmd.Printf("  Type:     %s\n", doc.ContentType)
	cmd.Printf("  Size:     %d bytes\n", doc.Size)
	cmd.Printf("  Status:   %s\n", doc.Status)
	if doc.ErrorMessage != "" {
		cmd.Printf("  Error:    %s\n", doc.ErrorMessage)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if !doc.LastIndexedAt.IsZero() {
		cmd.Printf("  Indexed:  %s\n", doc.LastIndexedAt.Format("2006-01-02 15:04:05"))
	}

	if len(doc.Metadata) > 0 {
		cmd.Println("\n  Metadata:")
		for k, v := range doc.Metadata {
			cmd.Printf("    %s: %s\n", k, v)
		}
	}

	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found", args[0])
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
