package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of the employee directory",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [employee-id]",
	Short: "Show one employee from the loaded page",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var divisionsCmd = &cobra.Command{
	Use:   "divisions",
	Short: "List the division reference data",
	RunE:  runDivisions,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [employee-id]",
	Short: "Delete an employee record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().Int("page", 1, "Page number to fetch")
	listCmd.Flags().String("search", "", "Case-insensitive name filter applied to the fetched page")
	showCmd.Flags().Int("page", 1, "Page to look the employee up on")
	deleteCmd.Flags().Int("page", 1, "Page to reload after deleting")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := requireAuth(current); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	search, _ := cmd.Flags().GetString("search")

	current.directory.SetFilter(search)
	current.directory.LoadPage(cmd.Context(), page)
	if msg := current.directory.Message(); msg != "" {
		return errors.New(msg)
	}

	visible := current.directory.Visible()
	if len(visible) == 0 {
		fmt.Println("No employees found.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tDIVISION\tPOSITION")
		for _, e := range visible {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Phone, e.Division.Name, e.Position)
		}
		w.Flush()
	}
	fmt.Printf("Page %d of %d\n", current.directory.CurrentPage(), current.directory.TotalPages())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := requireAuth(current); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	current.directory.LoadPage(cmd.Context(), page)
	if msg := current.directory.Message(); msg != "" {
		return errors.New(msg)
	}

	for _, e := range current.directory.Page().Items {
		if e.ID == args[0] {
			fmt.Printf("Name:     %s\n", e.Name)
			fmt.Printf("Phone:    %s\n", e.Phone)
			fmt.Printf("Division: %s\n", e.Division.Name)
			fmt.Printf("Position: %s\n", e.Position)
			fmt.Printf("Image:    %s\n", e.Image)
			return nil
		}
	}
	return fmt.Errorf("employee %s not found on page %d", args[0], page)
}

func runDivisions(cmd *cobra.Command, args []string) error {
	if err := requireAuth(current); err != nil {
		return err
	}

	divisions := current.directory.Divisions(cmd.Context())
	if msg := current.directory.SideMessage(); msg != "" && len(divisions) == 0 {
		return errors.New(msg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, d := range divisions {
		fmt.Fprintf(w, "%s\t%s\n", d.ID, d.Name)
	}
	return w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := requireAuth(current); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	current.directory.LoadPage(cmd.Context(), page)
	if err := current.directory.Delete(cmd.Context(), args[0]); err != nil {
		return errors.New(current.directory.SideMessage())
	}
	fmt.Printf("Deleted employee %s\n", args[0])
	return nil
}
