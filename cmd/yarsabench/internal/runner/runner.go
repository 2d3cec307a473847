// Package runner drives one benchmark: it generates one key pair for the run,
// then for every input file pushes the bytes through the textbook engine batch
// by batch, checks the round trip, writes the results and repeats the
// measurement for each configured baseline cipher.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/config"
	"github.com/YaCodeDev/GoYaRSABench/yabaseline"
	"github.com/YaCodeDev/GoYaRSABench/yabench"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
	"github.com/YaCodeDev/GoYaRSABench/yastream"
)

const (
	DecryptedPrefix  = "decrypted_"
	CiphertextSuffix = ".cipher.txt"

	outputFileMode = 0o644
)

// Phase is the cost of one direction of one cipher over one file.
type Phase struct {
	Label      string
	Batches    int
	Elapsed    time.Duration
	PeakMemory uint64
}

// FileReport summarizes everything measured for one input file.
type FileReport struct {
	Path           string
	Bytes          int
	KeyModulus     *big.Int
	Encrypt        Phase
	Decrypt        Phase
	DecryptedPath  string
	CiphertextPath string
	Baselines      []BaselineReport
}

// BaselineReport is the cost of one baseline cipher over the same file.
type BaselineReport struct {
	Cipher      string
	SealedBytes int
	Encrypt     Phase
	Decrypt     Phase
}

// Runner holds everything that lives for one run: the key pair, the baseline
// ciphers and the harnesses. Every file of the run is measured with the same
// key. Runner is not safe for concurrent use of RunFile on the same output paths.
type Runner struct {
	cfg       *config.Bench
	key       *yarsa.KeyPair
	baselines []yabaseline.Cipher
	harness   *yabench.Harness
	blocks    *yabench.Harness
	log       yalogger.Logger
}

// New validates cfg, generates the run's key pair, builds the configured
// baselines and prepares the harnesses. Batches of input bytes are measured
// with cfg.BatchSize; sealed baseline blocks are decrypted and measured one
// at a time, so both directions report the same number of batches.
func New(cfg *config.Bench, collector yabench.Collector, runID string, log yalogger.Logger) (*Runner, yaerrors.Error) {
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err.WrapWithLog("[Runner] invalid configuration", log)
	}

	opts := cfg.HarnessOpts(collector, log)
	opts.RunID = runID

	harness, err := yabench.NewHarness(cfg.BatchSize, opts)
	if err != nil {
		return nil, err.Wrap("[Runner] failed to build harness")
	}

	opts.RunID = harness.RunID()

	blocks, err := yabench.NewHarness(1, opts)
	if err != nil {
		return nil, err.Wrap("[Runner] failed to build block harness")
	}

	log = log.WithField(yalogger.KeyRunID, harness.RunID())

	key, err := yarsa.GenerateKeyPair(cfg.KeyOpts())
	if err != nil {
		return nil, err.WrapWithLog("[Runner] failed to generate key pair", log)
	}

	log.Infof("Generated key pair with n=%s e=%s", key.N, key.E)

	baselines := make([]yabaseline.Cipher, 0, len(cfg.Baselines))

	for _, name := range cfg.Baselines {
		cipher, err := newBaseline(name, key, cfg.Seed)
		if err != nil {
			return nil, err.WrapWithLog("[Runner] failed to build baseline", log)
		}

		baselines = append(baselines, cipher)
	}

	return &Runner{
		cfg:       cfg,
		key:       key,
		baselines: baselines,
		harness:   harness,
		blocks:    blocks,
		log:       log,
	}, nil
}

func (r *Runner) RunID() string {
	return r.harness.RunID()
}

// PublicKey is the encrypting half of the run's key pair.
func (r *Runner) PublicKey() *yarsa.PublicKey {
	return &r.key.PublicKey
}

// RunFiles processes paths in order and stops at the first failure.
func (r *Runner) RunFiles(ctx context.Context, paths []string) ([]*FileReport, yaerrors.Error) {
	reports := make([]*FileReport, 0, len(paths))

	for _, path := range paths {
		report, err := r.RunFile(ctx, path)
		if err != nil {
			return reports, err
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func (r *Runner) RunFile(ctx context.Context, path string) (*FileReport, yaerrors.Error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, yaerrors.FromErrorWithLog(http.StatusBadRequest, readErr, "[Runner] failed to read "+path, r.log)
	}

	log := r.log.WithField("file", path)
	log.Infof("Read %d bytes", len(data))

	key := r.key
	label := filepath.Base(path)

	stream, encrypt, err := r.encrypt(ctx, label, key, data)
	if err != nil {
		return nil, err.WrapWithLog("[Runner] encryption of "+path+" failed", log)
	}

	plain, decrypt, err := r.decrypt(ctx, label, key, stream)
	if err != nil {
		return nil, err.WrapWithLog("[Runner] decryption of "+path+" failed", log)
	}

	if !bytes.Equal(plain, data) {
		return nil, yaerrors.Invariant(fmt.Sprintf("[Runner] round trip of %s changed the content", path))
	}

	report := &FileReport{
		Path:       path,
		Bytes:      len(data),
		KeyModulus: key.N,
		Encrypt:    encrypt,
		Decrypt:    decrypt,
	}

	if err := r.writeOutputs(path, plain, stream, report); err != nil {
		return nil, err.WrapWithLog("[Runner] failed to write outputs", log)
	}

	log.Infof(
		"Round trip ok: encrypt %s / %d bytes, decrypt %s / %d bytes",
		encrypt.Elapsed, encrypt.PeakMemory, decrypt.Elapsed, decrypt.PeakMemory,
	)

	for _, cipher := range r.baselines {
		baseline, err := r.runBaseline(ctx, label, cipher, data)
		if err != nil {
			return nil, err.WrapWithLog("[Runner] baseline "+cipher.Name()+" failed", log)
		}

		log.WithField(yalogger.KeyLabel, baseline.Cipher).Infof(
			"Baseline ok: encrypt %s / %d bytes, decrypt %s / %d bytes",
			baseline.Encrypt.Elapsed, baseline.Encrypt.PeakMemory,
			baseline.Decrypt.Elapsed, baseline.Decrypt.PeakMemory,
		)

		report.Baselines = append(report.Baselines, *baseline)
	}

	return report, nil
}

func (r *Runner) encrypt(
	ctx context.Context,
	label string,
	key *yarsa.KeyPair,
	data []byte,
) (yarsa.CipherStream, Phase, yaerrors.Error) {
	label += "/encrypt"

	res, err := yabench.ProcessInBatches(ctx, r.harness, label, data,
		func(batch []byte) ([]*big.Int, yaerrors.Error) {
			if r.cfg.Workers > 0 {
				return yarsa.EncryptParallel(ctx, &key.PublicKey, batch, r.cfg.Workers)
			}

			return yarsa.Encrypt(&key.PublicKey, batch), nil
		})
	if err != nil {
		return nil, Phase{}, err
	}

	return yarsa.CipherStream(yabench.Flatten(res.Batches)), phaseOf(label, res), nil
}

func (r *Runner) decrypt(
	ctx context.Context,
	label string,
	key *yarsa.KeyPair,
	stream yarsa.CipherStream,
) ([]byte, Phase, yaerrors.Error) {
	label += "/decrypt"

	res, err := yabench.ProcessInBatches(ctx, r.harness, label, stream,
		func(batch []*big.Int) ([]byte, yaerrors.Error) {
			if r.cfg.Workers > 0 {
				return yarsa.DecryptParallel(ctx, key, batch, r.cfg.Workers)
			}

			return yarsa.Decrypt(key, batch)
		})
	if err != nil {
		return nil, Phase{}, err
	}

	return yabench.Flatten(res.Batches), phaseOf(label, res), nil
}

func (r *Runner) runBaseline(
	ctx context.Context,
	label string,
	cipher yabaseline.Cipher,
	data []byte,
) (*BaselineReport, yaerrors.Error) {
	encLabel := label + "/" + cipher.Name() + "/encrypt"

	sealed, err := yabench.ProcessInBatches(ctx, r.harness, encLabel, data, cipher.Encrypt)
	if err != nil {
		return nil, err
	}

	decLabel := label + "/" + cipher.Name() + "/decrypt"

	// r.blocks has batch size 1: every sealed block is its own measured batch.
	opened, err := yabench.ProcessInBatches(ctx, r.blocks, decLabel, sealed.Batches,
		func(batch [][]byte) ([]byte, yaerrors.Error) {
			return cipher.Decrypt(batch[0])
		})
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(yabench.Flatten(opened.Batches), data) {
		return nil, yaerrors.Invariant("[Runner] baseline " + cipher.Name() + " changed the content")
	}

	sealedBytes := 0
	for _, block := range sealed.Batches {
		sealedBytes += len(block)
	}

	return &BaselineReport{
		Cipher:      cipher.Name(),
		SealedBytes: sealedBytes,
		Encrypt:     phaseOf(encLabel, sealed),
		Decrypt:     phaseOf(decLabel, opened),
	}, nil
}

// writeOutputs writes decrypted_<stem><ext> and, if enabled, <stem>.cipher.txt
// next to the input or into OutputDir.
func (r *Runner) writeOutputs(path string, plain []byte, stream yarsa.CipherStream, report *FileReport) yaerrors.Error {
	dir := r.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return yaerrors.FromError(http.StatusInternalServerError, err, "[Runner] failed to create "+dir)
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	report.DecryptedPath = filepath.Join(dir, DecryptedPrefix+base)

	if err := os.WriteFile(report.DecryptedPath, plain, outputFileMode); err != nil {
		return yaerrors.FromError(http.StatusInternalServerError, err, "[Runner] failed to write "+report.DecryptedPath)
	}

	if !r.cfg.WriteCiphertext {
		return nil
	}

	text, err := yastream.MarshalText(stream)
	if err != nil {
		return err.Wrap("[Runner] failed to encode ciphertext")
	}

	report.CiphertextPath = filepath.Join(dir, stem+CiphertextSuffix)

	if err := os.WriteFile(report.CiphertextPath, text, outputFileMode); err != nil {
		return yaerrors.FromError(http.StatusInternalServerError, err, "[Runner] failed to write "+report.CiphertextPath)
	}

	return nil
}

func phaseOf[Out any](label string, res *yabench.Result[Out]) Phase {
	return Phase{
		Label:      label,
		Batches:    len(res.Batches),
		Elapsed:    res.TotalElapsed,
		PeakMemory: res.TotalPeakMemory,
	}
}
