package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"starsync/internal/subsonic"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an API token interactively",
	Long: `Generate a Subsonic API token from your password and a salt. The token is
an MD5 hash of password+salt and is only valid together with the exact salt
used here; pass both to the sync command.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	fmt.Print("Enter your Subsonic password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Enter a salt (leave empty to generate one): ")
	reader := bufio.NewReader(os.Stdin)
	salt, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading salt: %w", err)
	}
	salt = strings.TrimSpace(salt)

	if salt == "" {
		salt = subsonic.NewSalt()
		fmt.Printf("Generated salt: %s\n", salt)
	} else if err := subsonic.ValidateSalt(salt); err != nil {
		return err
	}

	token := subsonic.Token(string(password), salt)

	fmt.Println()
	fmt.Printf("Your API token is: %s\n", token)
	fmt.Printf("It must be used together with salt %q.\n", salt)
	return nil
}
