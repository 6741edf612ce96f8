package installer

import (
	"github.com/lutris/installkit/database/models"
	"github.com/pkg/errors"
)

// Commit writes the game config and the install record, and returns
// the record's id. Extensions of another game write nothing.
func (inst *Installer) Commit(cfg *ResolvedConfig) (int64, error) {
	if inst.Extends != "" {
		inst.consumer.Infof("This is an extension to %s, not creating a new game entry", inst.Extends)
		return inst.GameID, nil
	}

	if cfg == nil {
		return 0, errors.New("nil config passed to Commit")
	}
	if inst.configs == nil || inst.runners == nil {
		return 0, errors.New("installer needs a config store and a runner registry to commit")
	}

	target := inst.interpreter.TargetPath()
	err := inst.applyNativeConfig(cfg, target)
	if err != nil {
		return 0, err
	}

	configPath, err := inst.configs.WriteGameConfig(inst.Slug, cfg.ToMap())
	if err != nil {
		return 0, persistenceError("writing game config", err)
	}

	platform, err := inst.runners.PlatformOf(inst.Runner)
	if err != nil {
		return 0, errors.Wrap(err, "getting runner platform")
	}

	game := &models.Game{
		ID:            inst.GameID,
		Name:          inst.Name,
		Runner:        inst.Runner,
		Slug:          inst.GameSlug,
		Platform:      platform,
		Directory:     target,
		Installed:     true,
		Hidden:        false,
		InstallerSlug: inst.Slug,
		ParentSlug:    inst.Requires,
		Year:          inst.Year,
		ConfigPath:    configPath,
		Service:       inst.ServiceID(),
		ServiceID:     inst.ServiceAppID,
		DiscordID:     inst.DiscordID,
	}

	id, err := inst.games.AddOrUpdate(game)
	if err != nil {
		return 0, persistenceError("saving game", err)
	}

	inst.GameID = id
	inst.consumer.Infof("Saved %s (game #%d)", inst.Name, id)
	return id, nil
}

// applyNativeConfig folds the provider's own launch manifest, if it
// dropped one in the install folder, into the game section.
func (inst *Installer) applyNativeConfig(cfg *ResolvedConfig, target string) error {
	if inst.Service == nil || inst.nativeAdapter == nil {
		return nil
	}
	if !KindOf(inst.Service.ID()).NativeManifest {
		return nil
	}
	if !inst.nativeAdapter.HasNativeManifest(target) {
		return nil
	}

	manifest, err := inst.nativeAdapter.ReadNativeManifest(target)
	if err != nil {
		return errors.Wrap(err, "reading provider manifest")
	}
	dir, err := inst.nativeAdapter.NativeInstallDir(target)
	if err != nil {
		return errors.Wrap(err, "finding provider install folder")
	}
	native, err := inst.nativeAdapter.ToLutrisConfig(manifest, dir)
	if err != nil {
		return errors.Wrap(err, "converting provider manifest")
	}
	if len(native) == 0 {
		inst.consumer.Debugf("Provider manifest has nothing to launch, keeping the script's game section")
		return nil
	}

	game := copyMap(cfg.Game)
	if game == nil {
		game = make(map[string]interface{})
	}
	for k, v := range native {
		game[k] = v
	}
	cfg.Game = game
	inst.consumer.Debugf("Merged %d keys from the provider manifest", len(native))
	return nil
}
