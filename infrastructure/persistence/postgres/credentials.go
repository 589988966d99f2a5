package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"quizcore-backend/infrastructure/config"
	"quizcore-backend/pkg/errors"
)

// dbSecret is the credential shape RDS-managed secrets use.
type dbSecret struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// SecretsAPI is the slice of the Secrets Manager client the resolver needs.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveDSN produces the connection string for the bridge's database.
// DATABASE_URL wins when set; a configured secret ARN is resolved through
// Secrets Manager; otherwise the discrete env-var fields are used.
func ResolveDSN(ctx context.Context, cfg *config.Config, secrets SecretsAPI) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}

	if cfg.DBSecretARN != "" {
		if secrets == nil {
			return "", errors.NewInternalError("DB_SECRET_ARN is set but no secrets client was provided")
		}
		out, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(cfg.DBSecretARN),
		})
		if err != nil {
			return "", errors.NewInternalError("failed to fetch database secret").WithCause(err)
		}
		var secret dbSecret
		if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &secret); err != nil {
			return "", errors.NewInternalError("database secret is not valid JSON").WithCause(err)
		}
		if secret.Host == "" {
			secret.Host = cfg.DBHost
		}
		if secret.Port == 0 {
			secret.Port = cfg.DBPort
		}
		if secret.DBName == "" {
			secret.DBName = cfg.DBName
		}
		return buildDSN(secret.Host, secret.Port, secret.Username, secret.Password, secret.DBName), nil
	}

	return buildDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName), nil
}

func buildDSN(host string, port int, user, password, dbname string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + dbname,
	}
	return u.String()
}
