package main

import (
	"encoding/json"
	"os"

	"github.com/questx-lab/guildsync/internal/domain"
	"github.com/questx-lab/guildsync/internal/model"
	"github.com/questx-lab/guildsync/internal/repository"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRefresh(cctx *cli.Context) error {
	if err := s.loadCore(); err != nil {
		return err
	}
	defer s.close()

	resp, err := s.credentialDomain.EnsureFresh(s.ctx, &model.EnsureFreshRequest{
		UserID: cctx.String("user"),
		Force:  cctx.Bool("force"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) startPull(cctx *cli.Context) error {
	if err := s.loadCore(); err != nil {
		return err
	}
	defer s.close()

	resp, err := s.credentialDomain.EnsureMembership(s.ctx, &model.EnsureMembershipRequest{
		GuildID: cctx.String("guild"),
		UserID:  cctx.String("user"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

// readOnlyDomain serves the commands which never talk to the provider.
func (s *srv) readOnlyDomain() (domain.CredentialDomain, error) {
	if err := s.loadDatabase(); err != nil {
		return nil, err
	}

	return domain.NewCredentialDomain(repository.NewCredentialRepository(), nil, nil, nil), nil
}

func (s *srv) startList(cctx *cli.Context) error {
	credentialDomain, err := s.readOnlyDomain()
	if err != nil {
		return err
	}

	resp, err := credentialDomain.GetList(s.ctx, &model.GetListCredentialRequest{
		IncludeTokens: cctx.Bool("tokens"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) startStats(cctx *cli.Context) error {
	credentialDomain, err := s.readOnlyDomain()
	if err != nil {
		return err
	}

	resp, err := credentialDomain.GetStats(s.ctx, &model.GetCredentialStatsRequest{
		GuildID: cctx.String("guild"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
