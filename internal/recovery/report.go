package recovery

import (
	"context"
	"fmt"
	"io"
	"time"

	"filippo.io/age"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var stageTitler = cases.Title(language.English)

// Report prints the recovered secrets in both import forms, optionally with
// a terminal QR code per otpauth URI, and writes the encrypted export when
// one was requested.
func (o *Orchestrator) Report(ctx context.Context, findings []Finding, out io.Writer) error {
	for _, f := range findings {
		rec := f.Record
		fmt.Fprintf(out, "\n== %s ==\n", f.Path)
		if rec.AccountName != "" {
			fmt.Fprintf(out, "account_name: %s\n", rec.AccountName)
		}
		if rec.SteamID != "" {
			fmt.Fprintf(out, "steamid: %s\n", rec.SteamID)
		}
		if rec.SharedSecret != "" {
			fmt.Fprintf(out, "shared_secret: %s\n", rec.SharedSecret)
		}
		if rec.IdentitySecret != "" {
			fmt.Fprintf(out, "identity_secret: %s\n", rec.IdentitySecret)
		}
		if rec.URI != "" {
			fmt.Fprintf(out, "uri: %s\n", rec.URI)
		}

		if rec.TOTPSecret == "" {
			o.logger.Warning("%s: fields recovered but no TOTP seed could be derived", f.Path)
			continue
		}
		fmt.Fprintf(out, "steam-uri: %s\n", rec.SteamURI())
		fmt.Fprintf(out, "otpauth-universal: %s\n", rec.OtpauthURI())

		if o.cfg.ShowQR {
			q, err := qrcode.New(rec.OtpauthURI(), qrcode.Medium)
			if err != nil {
				o.logger.Warning("Could not render QR code for %s: %v", f.Path, err)
				continue
			}
			fmt.Fprint(out, q.ToSmallString(false))
		}
	}

	if o.cfg.ExportPath != "" {
		return o.export(ctx, findings)
	}
	return nil
}

// export writes every recovered record to an age passphrase-encrypted file.
func (o *Orchestrator) export(ctx context.Context, findings []Finding) error {
	passphrase, err := o.prompt.ExportPassphrase(ctx)
	if err != nil {
		return mapAbort(err)
	}
	if passphrase == "" {
		return fmt.Errorf("%w: export passphrase not provided", ErrUserAbort)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("failed to derive export recipient: %w", err)
	}

	file, err := o.fs.Create(o.cfg.ExportPath)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", o.cfg.ExportPath, err)
	}
	defer file.Close()

	w, err := age.Encrypt(file, recipient)
	if err != nil {
		return fmt.Errorf("failed to start encrypted export: %w", err)
	}
	for _, f := range findings {
		rec := f.Record
		fmt.Fprintf(w, "source: %s\n", f.Path)
		fmt.Fprintf(w, "account_name: %s\n", rec.AccountName)
		fmt.Fprintf(w, "steamid: %s\n", rec.SteamID)
		fmt.Fprintf(w, "shared_secret: %s\n", rec.SharedSecret)
		fmt.Fprintf(w, "identity_secret: %s\n", rec.IdentitySecret)
		fmt.Fprintf(w, "totp_secret: %s\n", rec.TOTPSecret)
		fmt.Fprintf(w, "steam-uri: %s\n", rec.SteamURI())
		fmt.Fprintf(w, "otpauth-universal: %s\n\n", rec.OtpauthURI())
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize encrypted export: %w", err)
	}

	o.logger.Info("Encrypted export written to %s", o.cfg.ExportPath)
	return nil
}

// PrintSummary renders the per-stage outcome table.
func (o *Orchestrator) PrintSummary(out io.Writer) {
	if len(o.stages) == 0 {
		return
	}
	fmt.Fprintln(out, "\nRun summary:")
	for _, s := range o.stages {
		fmt.Fprintf(out, "  %-10s %-7s %s\n",
			stageTitler.String(s.Name), s.Status, s.Duration.Round(time.Millisecond))
	}
}
