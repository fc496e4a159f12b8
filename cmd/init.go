package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/config"
	"github.com/Rana718/tablekeep/template"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new tablekeep project",
	Long:  `Create tablekeep.config.json and a .env entry for the storage connection URL.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.SQLite
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		force, _ := cmd.Flags().GetBool("force")
		return initializeProject(dbType, force)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Store tables in a SQLite file (default)")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Store tables in PostgreSQL")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Store tables in MySQL")
}

func initializeProject(dbType template.DatabaseType, force bool) error {
	tmpl := template.NewProjectTemplate(dbType)

	if _, err := os.Stat(config.FileName); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	directories := tmpl.GetDirectoryStructure()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	cfg, err := tmpl.GetConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(config.FileName, []byte(cfg), 0644); err != nil {
		return fmt.Errorf("failed to create file %s: %w", config.FileName, err)
	}

	if err := handleEnvFile(".env", tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	fmt.Printf("✅ Successfully initialized tablekeep with %s storage\n", dbType)
	fmt.Println()
	fmt.Println("📁 Directories created:")
	for _, dir := range directories {
		fmt.Printf("   %s/\n", dir)
	}
	fmt.Println()
	fmt.Println("📝 Configuration file created:")
	fmt.Printf("   %s\n", config.FileName)

	if os.Getenv(config.DefaultURLEnv) != "" {
		fmt.Println()
		fmt.Printf("ℹ️  Using existing %s from environment\n", config.DefaultURLEnv)
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   tablekeep tables add \"Users, Orders\"   # Create tables\n")
	fmt.Printf("   tablekeep columns add -t Users Name,Age  # Add columns\n")
	fmt.Printf("   tablekeep studio                         # Open the HTTP API\n")

	return nil
}

// handleEnvFile writes the connection URL entry to envPath, keeping any
// existing variables.
func handleEnvFile(envPath, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, config.DefaultURLEnv) {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by tablekeep\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
