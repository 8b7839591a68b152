package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/opentoys/sm2kit/config"
	"github.com/opentoys/sm2kit/crypto/sm2"
	"github.com/opentoys/sm2kit/logx"
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagKey      = "key"
	flagPub      = "pub"
	flagPeer     = "peer"
	flagUID      = "uid"
	flagMsg      = "msg"
	flagMsgHex   = "msg-hex"
	flagIn       = "in"
	flagDigest   = "digest"
	flagSig      = "sig"
	flagCompress = "compressed"
)

// errBadSignature is returned by verify for a signature that does not
// verify, so the process exits non-zero.
var errBadSignature = errors.New("signature is not valid")

// tool carries the state shared by the subcommands once the root command
// has loaded the configuration.
type tool struct {
	in    io.Reader
	out   io.Writer
	cfg   *config.Config
	log   *slog.Logger
	curve *sm2.Curve
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	t := &tool{in: in, out: out}
	root := &cobra.Command{
		Use:           "sm2tool",
		Short:         "SM2 key, signature and key agreement tool",
		Long:          "A CLI tool for SM2 key generation, GB/T 32918 signatures and ECDH. Keys, digests and signatures are hex encoded.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return t.setup(cmd, errOut)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().String(flagConfig, "", "path to TOML config file")
	root.PersistentFlags().String(flagLogLevel, "", "log level overriding the config: debug, info, warn or error")

	root.AddCommand(
		t.keygenCmd(),
		t.digestCmd(),
		t.signCmd(),
		t.verifyCmd(),
		t.ecdhCmd(),
		t.checkCmd(),
	)
	return root
}

func (t *tool) setup(cmd *cobra.Command, errOut io.Writer) error {
	var err error
	if f, _ := cmd.Flags().GetString(flagConfig); f != "" {
		t.cfg, err = config.LoadFile(f)
		if err != nil {
			return err
		}
	} else {
		t.cfg = config.Default()
	}
	if lvl, _ := cmd.Flags().GetString(flagLogLevel); lvl != "" {
		l, err := logx.ParseLevel(lvl)
		if err != nil {
			return err
		}
		t.cfg.Logging.Level = l.String()
	}
	t.log = t.cfg.Logger(errOut)
	t.curve, err = t.cfg.Curve(t.log, nil)
	return err
}

func (t *tool) keygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Long: `Generate a key pair and print the private scalar and the public key,
uncompressed unless --compressed is set.

Example:
  sm2tool keygen
  sm2tool keygen --compressed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := t.curve.GenerateKey(rand.Reader)
			if err != nil {
				return err
			}
			t.log.Info("key generated")
			fmt.Fprintf(t.out, "private %x\n", priv.Bytes())
			if c, _ := cmd.Flags().GetBool(flagCompress); c {
				fmt.Fprintf(t.out, "public %x\n", priv.PublicKey.BytesCompressed())
			} else {
				fmt.Fprintf(t.out, "public %x\n", priv.PublicKey.Bytes())
			}
			return nil
		},
	}
	cmd.Flags().Bool(flagCompress, false, "print the compressed public key")
	return cmd
}

func (t *tool) digestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Compute the SM3 digest of ZA and a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := publicFlag(cmd, flagPub)
			if err != nil {
				return err
			}
			msg, err := t.message(cmd)
			if err != nil {
				return err
			}
			d, err := t.curve.CalculateSM2Hash(pub, msg, uidFlag(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(t.out, "%x\n", d)
			return nil
		},
	}
	cmd.Flags().String(flagPub, "", "signer public key in hex (required)")
	messageFlags(cmd)
	return cmd
}

func (t *tool) signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message or a digest",
		Long: `Sign a message, hashed together with ZA for the uid, or a precomputed digest.
The DER signature is printed in hex.

Example:
  sm2tool sign --key 3945... --msg "hello"
  sm2tool sign --key 3945... --digest 66c7...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := privateFlag(t.curve, cmd)
			if err != nil {
				return err
			}
			digest, err := t.digest(cmd, &priv.PublicKey)
			if err != nil {
				return err
			}
			sig, err := t.curve.SignASN1(rand.Reader, priv, digest)
			if err != nil {
				return err
			}
			t.log.Info("message signed", "digest", hex.EncodeToString(digest))
			fmt.Fprintf(t.out, "%x\n", sig)
			return nil
		},
	}
	cmd.Flags().String(flagKey, "", "private key in hex (required)")
	cmd.Flags().String(flagDigest, "", "digest in hex, signed as is")
	messageFlags(cmd)
	return cmd
}

func (t *tool) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature",
		Long: `Verify a DER signature over a message or a digest. Prints valid or
invalid; an invalid signature also makes the command fail.

Example:
  sm2tool verify --pub 04a1... --sig 3045... --msg "hello"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := publicFlag(cmd, flagPub)
			if err != nil {
				return err
			}
			sig, err := hexFlag(cmd, flagSig)
			if err != nil {
				return err
			}
			digest, err := t.digest(cmd, pub)
			if err != nil {
				return err
			}
			ok, err := t.curve.VerifyASN1(pub, digest, sig)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(t.out, "invalid")
				return errBadSignature
			}
			fmt.Fprintln(t.out, "valid")
			return nil
		},
	}
	cmd.Flags().String(flagPub, "", "signer public key in hex (required)")
	cmd.Flags().String(flagSig, "", "DER signature in hex (required)")
	cmd.Flags().String(flagDigest, "", "digest in hex, verified as is")
	messageFlags(cmd)
	return cmd
}

func (t *tool) ecdhCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecdh",
		Short: "Compute the shared x coordinate with a peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := privateFlag(t.curve, cmd)
			if err != nil {
				return err
			}
			peer, err := publicFlag(cmd, flagPeer)
			if err != nil {
				return err
			}
			z, err := t.curve.SharedSecret(priv, peer)
			if err != nil {
				return err
			}
			fmt.Fprintf(t.out, "%x\n", z)
			return nil
		},
	}
	cmd.Flags().String(flagKey, "", "private key in hex (required)")
	cmd.Flags().String(flagPeer, "", "peer public key in hex (required)")
	return cmd
}

func (t *tool) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a public key and optionally its private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := hexFlag(cmd, flagPub)
			if err != nil {
				return err
			}
			var pub *sm2.PublicKey
			switch {
			case len(b) == 65 && b[0] == 0x04:
				pub = &sm2.PublicKey{
					X: new(big.Int).SetBytes(b[1:33]),
					Y: new(big.Int).SetBytes(b[33:]),
				}
			case len(b) == 33:
				if pub, err = sm2.NewPublicKey(b); err != nil {
					return errors.Wrapf(err, "--%s", flagPub)
				}
			default:
				return errors.Newf("--%s: expected 65 byte uncompressed or 33 byte compressed point, got %d bytes", flagPub, len(b))
			}
			var d *big.Int
			if cmd.Flags().Changed(flagKey) {
				k, err := hexFlag(cmd, flagKey)
				if err != nil {
					return err
				}
				d = new(big.Int).SetBytes(k)
			}
			if err := t.curve.CheckKey(pub, d); err != nil {
				return err
			}
			fmt.Fprintln(t.out, "ok")
			return nil
		},
	}
	cmd.Flags().String(flagPub, "", "public key in hex (required)")
	cmd.Flags().String(flagKey, "", "private key in hex")
	return cmd
}

func messageFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagUID, "", "signer identity, the configured one when empty")
	cmd.Flags().String(flagMsg, "", "message text")
	cmd.Flags().String(flagMsgHex, "", "message in hex")
	cmd.Flags().String(flagIn, "", "message file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive(flagMsg, flagMsgHex, flagIn)
}

// message returns the message given by --msg, --msg-hex or --in.
func (t *tool) message(cmd *cobra.Command) ([]byte, error) {
	switch {
	case cmd.Flags().Changed(flagMsgHex):
		return hexFlag(cmd, flagMsgHex)
	case cmd.Flags().Changed(flagIn):
		f, _ := cmd.Flags().GetString(flagIn)
		if f == "-" {
			return io.ReadAll(t.in)
		}
		b, err := os.ReadFile(f)
		return b, errors.Wrapf(err, "--%s", flagIn)
	}
	s, _ := cmd.Flags().GetString(flagMsg)
	return []byte(s), nil
}

// digest returns --digest when given, and the SM2 hash of the message for
// pub otherwise.
func (t *tool) digest(cmd *cobra.Command, pub *sm2.PublicKey) ([]byte, error) {
	if cmd.Flags().Changed(flagDigest) {
		return hexFlag(cmd, flagDigest)
	}
	msg, err := t.message(cmd)
	if err != nil {
		return nil, err
	}
	return t.curve.CalculateSM2Hash(pub, msg, uidFlag(cmd))
}

func uidFlag(cmd *cobra.Command) []byte {
	s, _ := cmd.Flags().GetString(flagUID)
	return []byte(s)
}

func hexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, errors.Newf("--%s is required", name)
	}
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", name)
	}
	return b, nil
}

func publicFlag(cmd *cobra.Command, name string) (*sm2.PublicKey, error) {
	b, err := hexFlag(cmd, name)
	if err != nil {
		return nil, err
	}
	pub, err := sm2.NewPublicKey(b)
	return pub, errors.Wrapf(err, "--%s", name)
}

func privateFlag(c *sm2.Curve, cmd *cobra.Command) (*sm2.PrivateKey, error) {
	b, err := hexFlag(cmd, flagKey)
	if err != nil {
		return nil, err
	}
	priv, err := c.NewPrivateKey(b)
	return priv, errors.Wrapf(err, "--%s", flagKey)
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
