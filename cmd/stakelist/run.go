package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/forestrie/go-nftstaking/authority"
	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/stakelist"
)

type recordJSON struct {
	Slot      *int        `json:"slot,omitempty"`
	Owner     identity.ID `json:"owner"`
	Token     identity.ID `json:"token"`
	Holder    identity.ID `json:"holder"`
	StakeTime int64       `json:"stakeTime"`
}

func toJSON(v stakelist.View) recordJSON {
	return recordJSON{Owner: v.Owner(), Token: v.Token(), Holder: v.Holder(), StakeTime: v.StakeTime()}
}

func printJson(handle io.Writer, message interface{}) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}
	fmt.Fprintf(handle, "%s\n", b)
	return nil
}

func openFile(c *cli.Context) (*stakelist.Store, error) {
	m := c.App.Metadata["config"].(*metadata)
	file := c.String("file")
	if "" == file {
		return nil, errors.New("file name is required")
	}
	m.log.Debugf("reading %s", file)
	buf, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return stakelist.Open(buf)
}

func parseID(c *cli.Context, name string) (identity.ID, error) {
	s := c.String(name)
	if "" == s {
		return identity.ID{}, fmt.Errorf("%s is required", name)
	}
	id, err := identity.Parse(s)
	if nil != err {
		return identity.ID{}, fmt.Errorf("%s: %w", name, err)
	}
	return id, nil
}

func runHeader(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	s, err := openFile(c)
	if nil != err {
		return err
	}
	h := s.Header()
	return printJson(m.w, map[string]interface{}{
		"initialized": h.Initialized,
		"capacity":    h.Capacity,
		"count":       h.Count,
		"bytes":       stakelist.BufferBytes(h.Capacity),
	})
}

func runList(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	s, err := openFile(c)
	if nil != err {
		return err
	}
	records := make([]recordJSON, 0, s.Len())
	s.Range(func(i int, v stakelist.View) bool {
		r := toJSON(v)
		r.Slot = &i
		records = append(records, r)
		return true
	})
	return printJson(m.w, records)
}

func runFind(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	owner, err := parseID(c, "owner")
	if nil != err {
		return err
	}
	token, err := parseID(c, "token")
	if nil != err {
		return err
	}
	s, err := openFile(c)
	if nil != err {
		return err
	}

	v, ok := s.FindByKeys(owner, token)
	if !ok {
		return fmt.Errorf("no record for owner %s, token %s", owner, token)
	}
	return printJson(m.w, toJSON(v))
}

func runInit(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	file := c.String("file")
	if "" == file {
		return errors.New("file name is required")
	}
	capacity := c.Uint("capacity")
	if capacity == 0 || capacity > uint(stakelist.MaxCapacity) {
		return fmt.Errorf("invalid capacity: %d", capacity)
	}
	if _, err := os.Stat(file); nil == err && !c.Bool("force") {
		return fmt.Errorf("not overwriting existing file: %q", file)
	}

	buf := make([]byte, stakelist.BufferBytes(uint16(capacity)))
	s, err := stakelist.Init(buf, uint16(capacity))
	if nil != err {
		return err
	}
	if err = os.WriteFile(file, buf, 0o644); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "wrote %d bytes to %s\n", len(buf), file)
	}
	h := s.Header()
	return printJson(m.w, map[string]interface{}{
		"initialized": h.Initialized,
		"capacity":    h.Capacity,
		"count":       h.Count,
		"bytes":       len(buf),
	})
}

func runAuthority(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	program, err := parseID(c, "program")
	if nil != err {
		return err
	}
	owner, err := parseID(c, "owner")
	if nil != err {
		return err
	}
	token, err := parseID(c, "token")
	if nil != err {
		return err
	}
	capability, err := authority.Derive(program, []byte(c.String("tag")), owner, token)
	if nil != err {
		return err
	}
	return printJson(m.w, map[string]interface{}{
		"authority": capability.ID,
		"nonce":     capability.Nonce,
	})
}
