// Package aws wraps the AWS SDK calls the installer needs: credential
// resolution, the tenant data buckets in S3, and discovery of the RDS
// PostgreSQL endpoint created for a cluster.
package aws
