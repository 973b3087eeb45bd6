package generate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"github.com/dostiep/360i/define"
	"github.com/dostiep/360i/library"
	"github.com/dostiep/360i/usdm"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use: "generate <usdm-file> <output-template>",

	Short: "Generates a define template from a USDM study document.",

	Long: `The define template is a denormalized JSON document describing the
datasets, variables, value-level metadata, and codelists implied by the
biomedical concepts of a USDM study. Concept, dataset, and codelist
definitions are resolved against the CDISC Library, so an API key is
required. The key is taken from the --api-key option, the CDISC_API_KEY
environment variable, or a .env file, in that order.
`,

	Example: `Generate a template against SDTMIG 3.4:
  define-template generate --sdtmig=3.4 study.json template.json`,

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			cmd.Usage()
			return
		}

		// Positional.
		usdmPath := args[0]
		outPath := args[1]

		// Options.
		apiKey := viper.GetString("generate.api-key")
		serviceURL := viper.GetString("generate.url")
		igVersion := viper.GetString("generate.sdtmig")
		ctVersion := viper.GetString("generate.sdtmct")
		studyVersion := viper.GetInt("generate.study-version")
		docVersion := viper.GetInt("generate.doc-version")

		if apiKey == "" {
			godotenv.Load()
			apiKey = os.Getenv("CDISC_API_KEY")
		}

		if _, err := semver.ParseTolerant(igVersion); err != nil {
			cmd.Printf("Bad SDTMIG version '%s': %s\n", igVersion, err)
			os.Exit(1)
		}

		doc, err := usdm.ReadFile(usdmPath)

		if err != nil {
			cmd.Printf("Error reading USDM document: %s\n", err)
			os.Exit(1)
		}

		client, err := library.New(serviceURL, apiKey)

		if err != nil {
			cmd.Printf("Bad service URL: %s\n", err)
			os.Exit(1)
		}

		logger, _ := zap.NewProduction()
		defer logger.Sync()

		engine := define.New(client, igVersion, ctVersion, logger)

		template, warnings, err := engine.Build(doc, studyVersion, docVersion)

		if err != nil {
			cmd.Printf("Error building template: %s\n", err)
			os.Exit(1)
		}

		b, err := json.MarshalIndent(template, "", "    ")

		if err != nil {
			cmd.Printf("Error encoding template: %s\n", err)
			os.Exit(1)
		}

		if err := os.WriteFile(outPath, b, 0664); err != nil {
			cmd.Printf("Error writing output file: %s\n", err)
			os.Exit(1)
		}

		cmd.Printf("Wrote template to '%s' for SDTMIG %s, CT %s\n", outPath, igVersion, ctVersion)

		if len(warnings) > 0 {
			bold := color.New(color.Bold, color.FgYellow).SprintFunc()

			fmt.Fprintln(os.Stderr, bold(fmt.Sprintf("%d warnings collected during the run:", len(warnings))))

			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "  [%s] %s\n", w.Stage, w.Message)
			}
		}
	},
}

func init() {
	flags := Cmd.Flags()

	flags.String("api-key", "", "CDISC Library API key. Defaults to the CDISC_API_KEY environment variable.")
	flags.String("url", library.DefaultServiceURL, "CDISC Library service URL.")
	flags.String("sdtmig", define.DefaultIGVersion, "SDTMIG version the datasets are resolved against.")
	flags.String("sdtmct", define.DefaultCTVersion, "SDTM controlled terminology package version.")
	flags.Int("study-version", 0, "Index of the study version to process.")
	flags.Int("doc-version", 0, "Index of the document version the study language is read from.")

	viper.BindPFlag("generate.api-key", flags.Lookup("api-key"))
	viper.BindPFlag("generate.url", flags.Lookup("url"))
	viper.BindPFlag("generate.sdtmig", flags.Lookup("sdtmig"))
	viper.BindPFlag("generate.sdtmct", flags.Lookup("sdtmct"))
	viper.BindPFlag("generate.study-version", flags.Lookup("study-version"))
	viper.BindPFlag("generate.doc-version", flags.Lookup("doc-version"))
}
