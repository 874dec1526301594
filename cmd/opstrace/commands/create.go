package commands

import (
	"github.com/spf13/cobra"

	"github.com/starrohan999/opstrace/cmd/opstrace/handlers"
	"github.com/starrohan999/opstrace/internal/config"
)

// Create returns the command that creates an instance.
//
// Required flags:
//
//	--config, -c: Path to the cluster configuration YAML file
//	--infra-outputs: Path to the infrastructure outputs document
//
// Environment variables:
//
//	OPSTRACE_CREATE_*, OPSTRACE_PROBE_*: attempt and probe tuning
//	AWS_* / GOOGLE_APPLICATION_CREDENTIALS: provider credentials
func Create() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create <aws|gcp> <cluster-name>",
		Short: "Create an opstrace instance",
		Long: `Create an opstrace instance on AWS or GCP.

The infrastructure described by --infra-outputs is adopted, the controller
configuration and tenant list are written into the cluster, the controller
is deployed, and the command waits until every tenant endpoint answers.
Failed or timed out attempts are retried.

Examples:
  # Create an instance on AWS
  opstrace create aws mycluster -c config.yaml --infra-outputs outputs.yaml

  # Use tenant API tokens from a directory and keep the kubeconfig
  opstrace create gcp mycluster -c config.yaml --infra-outputs outputs.yaml \
    --tenant-api-tokens-dir ./tokens --write-kubeconfig-file ./kubeconfig`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{config.ProviderAWS, config.ProviderGCP},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Provider = args[0]
			opts.ClusterName = args[1]
			opts.LogLevel = logLevel
			return handlers.Create(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the cluster configuration file")
	cmd.Flags().StringVar(&opts.InfraOutputsPath, "infra-outputs", "", "Path to the infrastructure outputs document")
	cmd.Flags().StringVar(&opts.KubeconfigPath, "write-kubeconfig-file", "", "Write the cluster's kubeconfig to this path")
	cmd.Flags().StringVar(&opts.TokensDir, "tenant-api-tokens-dir", "", "Directory with tenant-api-token-<tenant> files")
	cmd.Flags().StringVar(&opts.GCPCredentialsFile, "gcp-credentials-file", "", "GCP service account key (default: application default credentials)")
	cmd.Flags().StringVar(&opts.MetricsPushURL, "metrics-push-url", "", "Pushgateway URL to push installer metrics to")
	cmd.Flags().BoolVar(&opts.HoldController, "hold-controller", false, "Do not deploy the controller")

	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("infra-outputs")

	return cmd
}
