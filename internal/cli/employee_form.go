package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourorg/staffdesk/internal/domain"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an employee record",
	Long:  `Create an employee record. Every field, including the image, is required.`,
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit [employee-id]",
	Short: "Update an employee record",
	Long: `Update an employee record. Only the provided flags are sent; at
least one field must actually change.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().String("name", "", "Employee name")
		c.Flags().String("phone", "", "Phone number")
		c.Flags().String("division", "", "Division ID")
		c.Flags().String("position", "", "Position title")
		c.Flags().String("image", "", "Path to a local image file")
	}
	editCmd.Flags().Int("page", 1, "Page to look the employee up on")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireAuth(current); err != nil {
		return err
	}

	current.form.OpenCreate()
	applyFlags(cmd)

	if err := current.form.Submit(cmd.Context()); err != nil {
		return errors.New(current.form.Message())
	}
	fmt.Println("Employee added")
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	if err := requireAuth(current); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	current.directory.LoadPage(cmd.Context(), page)
	if msg := current.directory.Message(); msg != "" {
		return errors.New(msg)
	}

	var pristine *domain.Employee
	for _, e := range current.directory.Page().Items {
		if e.ID == args[0] {
			pristine = &e
			break
		}
	}
	if pristine == nil {
		return fmt.Errorf("employee %s not found on page %d", args[0], page)
	}

	current.form.OpenEdit(*pristine)
	applyFlags(cmd)

	if err := current.form.Submit(cmd.Context()); err != nil {
		return errors.New(current.form.Message())
	}
	fmt.Printf("Employee %s updated\n", args[0])
	return nil
}

// applyFlags copies the set form flags into the open draft.
func applyFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("name"); cmd.Flags().Changed("name") {
		current.form.SetName(v)
	}
	if v, _ := cmd.Flags().GetString("phone"); cmd.Flags().Changed("phone") {
		current.form.SetPhone(v)
	}
	if v, _ := cmd.Flags().GetString("division"); cmd.Flags().Changed("division") {
		current.form.SetDivision(v)
	}
	if v, _ := cmd.Flags().GetString("position"); cmd.Flags().Changed("position") {
		current.form.SetPosition(v)
	}
	if v, _ := cmd.Flags().GetString("image"); cmd.Flags().Changed("image") {
		current.form.SetImagePath(v)
	}
}
