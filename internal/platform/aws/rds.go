package aws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/starrohan999/opstrace/internal/util/naming"
)

const dbAvailableStatus = "available"

// ErrDBNotAvailable is returned when the DB cluster exists but is not yet usable.
var ErrDBNotAvailable = errors.New("database cluster is not available yet")

type rdsAPI interface {
	DescribeDBClusters(ctx context.Context, params *rds.DescribeDBClustersInput, optFns ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error)
}

// Databases looks up the PostgreSQL cluster backing an installation.
type Databases struct {
	rds rdsAPI
}

// NewDatabases creates an RDS lookup client.
func NewDatabases(cfg aws.Config) *Databases {
	return &Databases{rds: rds.NewFromConfig(cfg)}
}

// DBClusterID returns the RDS cluster identifier used for a cluster.
func DBClusterID(clusterName string) string {
	return naming.DBCluster(clusterName)
}

// PostgreSQLEndpoint returns a postgres:// URL for the cluster's database.
// The password is embedded when given.
func (d *Databases) PostgreSQLEndpoint(ctx context.Context, clusterName, password string) (string, error) {
	id := DBClusterID(clusterName)
	out, err := d.rds.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe DB cluster %s: %w", id, err)
	}
	if len(out.DBClusters) != 1 {
		return "", fmt.Errorf("expected exactly one DB cluster %s, got %d", id, len(out.DBClusters))
	}

	return endpointURL(out.DBClusters[0], password)
}

func endpointURL(c types.DBCluster, password string) (string, error) {
	if aws.ToString(c.Status) != dbAvailableStatus {
		return "", fmt.Errorf("%w: status %q", ErrDBNotAvailable, aws.ToString(c.Status))
	}
	host := aws.ToString(c.Endpoint)
	if host == "" {
		return "", errors.New("DB cluster has no endpoint")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   host + ":" + strconv.Itoa(int(aws.ToInt32(c.Port))),
	}
	user := aws.ToString(c.MasterUsername)
	switch {
	case user != "" && password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}
	return u.String(), nil
}
