package cli

import (
	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/pkg/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the anascode version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationDefaultsOnFailure: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			kind := "development build"
			if version.IsRelease() {
				kind = "release"
			}
			cmd.Printf("anascode %s (%s)\n", version.Normalize(ver), kind)
		},
	}
}
