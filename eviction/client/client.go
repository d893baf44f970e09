// Package client provides an HTTP client for the eviction service quota API.
package client

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"

	"github.com/cloudtask/relocation/eviction"
)

const DefaultHTTPTries = 5 // total tries with exponential backoff (0 and 1 both mean 1 try total)

const quotasPath = "api/v3/eviction/quotas/"

func MakePesterClient() *pester.Client {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = DefaultHTTPTries
	client.LogHook = func(e pester.ErrEntry) {
		log.Errorf("Retrying after failed attempt: %+v", e)
	}
	return client
}

// Client is the minimal http client surface we need, satisfied by pester.
type Client interface {
	Do(req *http.Request) (resp *http.Response, err error)
}

// MakeHTTPOperations returns eviction Operations backed by the quota API
// rooted at rootURI, with default retry behavior.
func MakeHTTPOperations(rootURI string) eviction.Operations {
	return MakeCustomHTTPOperations(rootURI, MakePesterClient())
}

// MakeCustomHTTPOperations is MakeHTTPOperations with an explicit client.
func MakeCustomHTTPOperations(rootURI string, client Client) eviction.Operations {
	if !strings.HasSuffix(rootURI, "/") {
		rootURI = rootURI + "/"
	}
	log.Infof("Making new eviction quota client with root URI: %s", rootURI)
	return &httpOperations{rootURI, client}
}

type httpOperations struct {
	rootURI string
	client  Client
}

// Wire representation of a quota record.
type quotaResponse struct {
	Quota   int64  `json:"quota"`
	Message string `json:"message"`
}

func (o *httpOperations) uri(ref eviction.Reference) string {
	if ref.Level() == eviction.LevelSystem {
		return o.rootURI + quotasPath + "system"
	}
	return o.rootURI + quotasPath + "jobs/" + ref.JobID()
}

func (o *httpOperations) GetEvictionQuota(ref eviction.Reference) (eviction.Quota, error) {
	quota, ok, err := o.FindEvictionQuota(ref)
	if err != nil {
		return eviction.Quota{}, err
	}
	if !ok {
		return eviction.Quota{}, fmt.Errorf("no eviction quota record for %s", ref)
	}
	return quota, nil
}

func (o *httpOperations) FindEvictionQuota(ref eviction.Reference) (eviction.Quota, bool, error) {
	uri := o.uri(ref)
	req, err := http.NewRequest("GET", uri, nil)
	if err != nil {
		return eviction.Quota{}, false, errors.Wrapf(err, "creating quota request for %s", ref)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return eviction.Quota{}, false, errors.Wrapf(err, "fetching eviction quota for %s", ref)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return eviction.Quota{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return eviction.Quota{}, false, errors.Errorf("eviction service returned %d for %s", resp.StatusCode, uri)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return eviction.Quota{}, false, errors.Wrapf(err, "reading quota response for %s", ref)
	}
	var wire quotaResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return eviction.Quota{}, false, errors.Wrapf(err, "decoding quota response for %s", ref)
	}
	return eviction.Quota{Reference: ref, Quota: wire.Quota, Message: wire.Message}, true, nil
}
