package installer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PlanFiles returns the files that must be acquired before the script
// steps run. When a provider is bound, the first user-provided file
// stands for the provider's installer: it is replaced by whatever the
// provider hands us, or by a placeholder the user fills in by hand.
// Nothing is downloaded or persisted.
func (inst *Installer) PlanFiles(ctx context.Context, patchVersion string) ([]*InstallerFile, error) {
	if len(inst.ScriptFiles) == 0 {
		return nil, nil
	}

	service := inst.Service
	if service != nil && service.Online() && !service.IsConnected() {
		return nil, authenticationError(service.ID())
	}

	installerFileID := ""
	if service != nil {
		installerFileID = inst.userProvidedFileID()
	}

	var files []*InstallerFile
	for _, f := range inst.ScriptFiles {
		if installerFileID != "" && f.ID == installerFileID {
			continue
		}
		files = append(files, f.WithURL(inst.interpreter.Substitute(f.URL)))
	}
	inst.rewriteURLs(ctx, files)

	if installerFileID == "" {
		return files, nil
	}

	inst.consumer.Infof("Getting files for %s", installerFileID)
	providerFiles, err := inst.providerFiles(ctx, installerFileID, patchVersion)
	if err != nil {
		inst.consumer.Warnf("Provider %s failed: %s", service.ID(), err.Error())
	}

	if len(providerFiles) > 0 {
		return append(files, providerFiles...), nil
	}

	inst.consumer.Debugf("Unable to get files from provider. Setting %s to manual.", installerFileID)
	placeholder := &InstallerFile{
		GameSlug: inst.GameSlug,
		ID:       installerFileID,
		URL:      ProviderInstallerURL,
		Filename: "",
	}
	return append([]*InstallerFile{placeholder}, files...), nil
}

// rewriteURLs swaps download pages for direct links, in parallel.
// A page that can't be resolved keeps its URL.
func (inst *Installer) rewriteURLs(ctx context.Context, files []*InstallerFile) {
	if inst.urlRewriter == nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		if !inst.urlRewriter.Matches(f.URL) {
			continue
		}
		g.Go(func() error {
			rewritten, err := inst.urlRewriter.Rewrite(gctx, f.URL)
			if err != nil {
				inst.consumer.Warnf("Could not get direct link for %s: %s", f.URL, err.Error())
				return nil
			}
			// each goroutine owns its file
			f.URL = rewritten
			return nil
		})
	}
	_ = g.Wait()
}

func (inst *Installer) providerFiles(ctx context.Context, fileID string, patchVersion string) ([]*InstallerFile, error) {
	service := inst.Service
	req := inst.serviceRequest()

	if patchVersion != "" {
		req.PatchVersion = patchVersion
		return service.GetPatchFiles(ctx, req, fileID)
	}

	var extras []string
	if service.HasExtras() {
		inst.consumer.Infof("Adding selected extras to downloads")
		extras = inst.interpreter.Extras()
	}
	return service.GetInstallerFiles(ctx, req, fileID, extras)
}

func (inst *Installer) userProvidedFileID() string {
	for _, f := range inst.ScriptFiles {
		if f.IsUserProvided() {
			return f.ID
		}
	}
	return ""
}
