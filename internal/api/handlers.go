package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vk/relaygrid/internal/adapter"
	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
)

type createRequest struct {
	ID     string             `json:"id"`
	Group  string             `json:"group"`
	Inputs *descriptor.Fields `json:"inputs"`
	Name   string             `json:"name"`
}

type deleteRequest struct {
	ID    string `json:"id"`
	Group string `json:"group"`
}

type executeRequest struct {
	ID     string                     `json:"id"`
	Group  string                     `json:"group"`
	Inputs map[string]json.RawMessage `json:"inputs"`
}

type nodeSummary struct {
	ID          string `json:"id"`
	Group       string `json:"group"`
	ClassName   string `json:"class_name"`
	NodeName    string `json:"node_name"`
	DisplayName string `json:"display_name"`
}

type nodeListing struct {
	nodeSummary
	ReturnTypes []string `json:"return_types"`
	ReturnNames []string `json:"return_names"`
}

type nodeDetail struct {
	nodeListing
	InputTypes adapter.InputTypes `json:"input_types"`
}

func summarize(e *catalog.Entry) nodeSummary {
	return nodeSummary{
		ID:          e.Descriptor.ID,
		Group:       string(e.Descriptor.Group),
		ClassName:   e.Adapter.ClassName(),
		NodeName:    e.Adapter.ClassName(),
		DisplayName: e.Descriptor.DisplayName,
	}
}

func describe(e *catalog.Entry) nodeListing {
	return nodeListing{
		nodeSummary: summarize(e),
		ReturnTypes: e.Adapter.ReturnTypes(),
		ReturnNames: e.Adapter.ReturnNames(),
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	group := groupOrDefault(req.Group)
	if req.Inputs != nil {
		for pair := req.Inputs.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == "" {
				return fmt.Errorf("%w: input names must not be empty", errBadRequest)
			}
		}
	}
	ctxlog.FromContext(r.Context()).Info("Received node create request.", "id", req.ID, "group", group, "name", req.Name)

	entry, err := s.catalog.Create(r.Context(), catalog.CreateRequest{
		ID:          req.ID,
		Group:       group,
		Fields:      req.Inputs,
		DisplayName: req.Name,
		Persist:     true,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"node":   summarize(entry),
	})
	return nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) error {
	entry, err := s.lookup(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"node": nodeDetail{
			nodeListing: describe(entry),
			InputTypes:  entry.Adapter.InputTypes(),
		},
	})
	return nil
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) error {
	entry, err := s.lookup(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, entry.Descriptor.JSONSchema())
	return nil
}

// lookup resolves the {id} path value and ?group= query of a request.
func (s *Server) lookup(r *http.Request) (*catalog.Entry, error) {
	group := groupOrDefault(r.URL.Query().Get("group"))
	return s.catalog.Get(r.Context(), group, r.PathValue("id"))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) error {
	var req deleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return fmt.Errorf("%w: node ID is required", errBadRequest)
	}
	group := groupOrDefault(req.Group)
	ctxlog.FromContext(r.Context()).Info("Received node delete request.", "id", req.ID, "group", group)

	removed, err := s.catalog.Delete(r.Context(), group, req.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: failed to remove node with ID %s in group %s", errBadRequest, req.ID, group)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": fmt.Sprintf("Node with ID %s in group %s removed", req.ID, group),
	})
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) error {
	entries, err := s.catalog.List(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		return err
	}
	nodes := make([]nodeListing, len(entries))
	for i, e := range entries {
		nodes[i] = describe(e)
	}
	ctxlog.FromContext(r.Context()).Debug("Listing nodes.", "count", len(nodes))

	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"nodes":  nodes,
	})
	return nil
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) error {
	var req executeRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return fmt.Errorf("%w: node ID is required", errBadRequest)
	}
	group := groupOrDefault(req.Group)

	entry, err := s.catalog.Get(r.Context(), group, req.ID)
	if err != nil {
		return err
	}
	inputs, err := entry.Adapter.DecodeInputs(req.Inputs)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	values, err := s.host.Invoke(entry.Key(), inputs)
	if err != nil {
		return err
	}
	outputs, err := adapter.EncodeOutputs(values)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       statusSuccess,
		"outputs":      outputs,
		"return_names": entry.Adapter.ReturnNames(),
	})
	return nil
}

func (s *Server) handleObjectInfo(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, s.host.ObjectInfo())
	return nil
}
