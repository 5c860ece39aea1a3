package kms

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/cloudkms/v1"
	"google.golang.org/api/option"

	"github.com/PYTHTRADER/findtrader/internal/config"
)

// CloudKMS encrypts with a symmetric key in Google Cloud KMS.
type CloudKMS struct {
	keys    *cloudkms.ProjectsLocationsKeyRingsCryptoKeysService
	keyName string
}

// KeyName formats the fully qualified crypto key resource name.
func KeyName(cfg config.KMSConfig) string {
	return fmt.Sprintf("projects/%s/locations/%s/keyRings/%s/cryptoKeys/%s",
		cfg.ProjectID, cfg.LocationID, cfg.KeyRingID, cfg.KeyID)
}

// NewCloudKMS creates a client using application default credentials, or the
// service account file when one is configured.
func NewCloudKMS(ctx context.Context, cfg config.KMSConfig, opts ...option.ClientOption) (*CloudKMS, error) {
	if cfg.ProjectID == "" || cfg.KeyRingID == "" || cfg.KeyID == "" {
		return nil, fmt.Errorf("kms key reference is incomplete")
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := cloudkms.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloudkms service: %w", err)
	}
	return &CloudKMS{
		keys:    svc.Projects.Locations.KeyRings.CryptoKeys,
		keyName: KeyName(cfg),
	}, nil
}

func (c *CloudKMS) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	resp, err := c.keys.Encrypt(c.keyName, &cloudkms.EncryptRequest{
		Plaintext: base64.StdEncoding.EncodeToString(plaintext),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("cloudkms encrypt: %w", err)
	}
	return resp.Ciphertext, nil
}
