package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// Initialize writes a default configuration and host key into dir. Files
// that already exist are kept as-is so re-running is safe.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	configPath := filepath.Join(dir, ConfigurationName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logger.Printf("Writing %s", configPath)
		if err := os.WriteFile(configPath, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	} else {
		logger.Printf("Keeping existing %s", configPath)
	}

	keyPath := filepath.Join(dir, HostKeyName)
	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		logger.Printf("Generating host key %s", keyPath)
		if err := writeHostKey(dir); err != nil {
			return nil, err
		}
	} else {
		logger.Printf("Keeping existing host key %s", keyPath)
	}

	return Load(dir)
}

// writeHostKey generates an ed25519 host key, storing the private half as
// PKCS#8 PEM and the public half in authorized_keys format.
func writeHostKey(dir string) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}
	keyPem := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(filepath.Join(dir, HostKeyName), keyPem, 0600); err != nil {
		return err
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, HostKeyPubName), ssh.MarshalAuthorizedKey(sshPub), 0644)
}
