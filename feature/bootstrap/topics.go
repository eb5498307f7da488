package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/reference"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryTopics = `query GET_TOPICS($instanceId: ID!, $language: String!) {
  topic {
    getMany(instanceId: $instanceId, language: $language) {
      id
      name
      parentId
      path
    }
  }
}`

const mutationCreateTopic = `mutation CREATE_TOPIC($input: CreateTopicInput!, $language: String!) {
  topic {
    create(input: $input, language: $language) { id }
  }
}`

// RemoteTopic is a topic as stored on the instance.
type RemoteTopic struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
	Path     string `json:"path"`
}

// FetchTopics reads every topic of the instance in one language.
func (s *Session) FetchTopics(ctx context.Context, language string) ([]RemoteTopic, error) {
	data, err := query[struct {
		Topic struct {
			GetMany []RemoteTopic `json:"getMany"`
		} `json:"topic"`
	}](ctx, s.Management, queryTopics, map[string]any{
		"instanceId": s.InstanceID,
		"language":   language,
	})
	return data.Topic.GetMany, err
}

// TopicTree rebuilds topic maps from a flat topic list, dropping ids.
func TopicTree(remote []RemoteTopic) []spec.Topic {
	children := make(map[string][]RemoteTopic, len(remote))
	known := make(map[string]bool, len(remote))
	for _, t := range remote {
		known[t.ID] = true
	}
	var roots []RemoteTopic
	for _, t := range remote {
		if t.ParentID == "" || !known[t.ParentID] {
			roots = append(roots, t)
			continue
		}
		children[t.ParentID] = append(children[t.ParentID], t)
	}

	var build func(ts []RemoteTopic) []spec.Topic
	build = func(ts []RemoteTopic) []spec.Topic {
		out := make([]spec.Topic, 0, len(ts))
		for _, t := range ts {
			out = append(out, spec.Topic{
				Name:           t.Name,
				PathIdentifier: lastSegment(t.Path),
				Children:       build(children[t.ID]),
			})
		}
		return out
	}
	return build(roots)
}

func lastSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func topicPath(parent string, t spec.Topic) string {
	segment := t.PathIdentifier
	if segment == "" {
		segment = spec.Slug(t.Name)
	}
	return reference.NormalizePath(spec.JoinPath(parent, segment))
}

type pendingTopic struct {
	topic      spec.Topic
	parentPath string
	parentID   string
}

// SetTopics creates missing topics level by level. A topic is identified by its path.
func (b *Bootstrapper) SetTopics(ctx context.Context) error {
	desired := b.currentSpec().Topics
	return b.runArea(ctx, status.Topics, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		language := sess.DefaultLanguage.Code
		if err := b.loadTopics(ctx, sess, language); err != nil {
			return err
		}
		if desired == nil {
			reconcile.NewTracker(0, rep).Complete()
			return nil
		}

		topics := mergeTopics("", *desired)
		missing := countMissingTopics(sess, language, "", topics)
		if missing > 0 {
			rep.Message(fmt.Sprintf("Adding %d topic(s)...", missing))
		}
		tracker := reconcile.NewTracker(missing, rep)

		level := make([]pendingTopic, 0, len(topics))
		for _, t := range topics {
			level = append(level, pendingTopic{topic: t})
		}

		for len(level) > 0 {
			var (
				next []pendingTopic
				mu   sync.Mutex
				wg   sync.WaitGroup
			)
			for _, p := range level {
				path := topicPath(p.parentPath, p.topic)
				if id, ok := sess.Resolver.ResolveTopic(language, path); ok {
					mu.Lock()
					next = appendTopicChildren(next, p.topic, path, id)
					mu.Unlock()
					continue
				}

				wg.Add(1)
				go func(p pendingTopic, path string) {
					defer wg.Done()
					id, err := createTopic(ctx, sess, language, p.topic.Name, topicSegment(p.topic), p.parentID)
					tracker.Done(p.topic.Name, err)
					if err != nil {
						skipTopics(tracker, p.topic.Children)
						return
					}
					sess.Resolver.RememberTopic(language, path, id)
					mu.Lock()
					next = appendTopicChildren(next, p.topic, path, id)
					mu.Unlock()
				}(p, path)
			}
			wg.Wait()
			level = next
		}

		tracker.Complete()
		return nil
	})
}

func (b *Bootstrapper) loadTopics(ctx context.Context, sess *Session, language string) error {
	existing, err := sess.FetchTopics(ctx, language)
	if err != nil {
		return fmt.Errorf("fetch topics: %w", err)
	}
	for _, t := range existing {
		sess.Resolver.RememberTopic(language, t.Path, t.ID)
	}
	return nil
}

func topicSegment(t spec.Topic) string {
	if t.PathIdentifier != "" {
		return t.PathIdentifier
	}
	return spec.Slug(t.Name)
}

func appendTopicChildren(next []pendingTopic, t spec.Topic, path, id string) []pendingTopic {
	for _, c := range t.Children {
		next = append(next, pendingTopic{topic: c, parentPath: path, parentID: id})
	}
	return next
}

func skipTopics(tracker *reconcile.Tracker, topics []spec.Topic) {
	for _, t := range topics {
		tracker.Done(t.Name, ErrParentUnavailable)
		skipTopics(tracker, t.Children)
	}
}

// mergeTopics collapses sibling topics sharing a path into the first occurrence.
// Children of later duplicates move under the first one.
func mergeTopics(parent string, topics []spec.Topic) []spec.Topic {
	out := make([]spec.Topic, 0, len(topics))
	index := make(map[string]int, len(topics))
	for _, t := range topics {
		path := topicPath(parent, t)
		if i, ok := index[path]; ok {
			out[i].Children = append(out[i].Children, t.Children...)
			continue
		}
		index[path] = len(out)
		t.Children = append([]spec.Topic(nil), t.Children...)
		out = append(out, t)
	}
	for i := range out {
		out[i].Children = mergeTopics(topicPath(parent, out[i]), out[i].Children)
	}
	return out
}

func countMissingTopics(sess *Session, language, parent string, topics []spec.Topic) int {
	n := 0
	for _, t := range topics {
		path := topicPath(parent, t)
		if _, ok := sess.Resolver.ResolveTopic(language, path); !ok {
			n++
		}
		n += countMissingTopics(sess, language, path, t.Children)
	}
	return n
}

func createTopic(ctx context.Context, sess *Session, language, name, pathIdentifier, parentID string) (string, error) {
	input := map[string]any{
		"instanceId":     sess.InstanceID,
		"name":           name,
		"pathIdentifier": pathIdentifier,
	}
	if parentID != "" {
		input["parentId"] = parentID
	}
	data, err := query[struct {
		Topic struct {
			Create struct {
				ID string `json:"id"`
			} `json:"create"`
		} `json:"topic"`
	}](ctx, sess.Management, mutationCreateTopic, map[string]any{
		"input":    input,
		"language": language,
	})
	if err != nil {
		return "", err
	}
	if data.Topic.Create.ID == "" {
		return "", fmt.Errorf("create topic %q: no id returned", name)
	}
	return data.Topic.Create.ID, nil
}

// ensureTopicPath returns the id of the topic at path, creating missing segments.
// Concurrent callers asking for the same path share one creation.
func (b *Bootstrapper) ensureTopicPath(ctx context.Context, sess *Session, language, path string) (string, error) {
	path = reference.NormalizePath(path)
	if id, ok := sess.Resolver.ResolveTopic(language, path); ok {
		return id, nil
	}

	v, err, _ := b.topicFlight.Do(language+":"+path, func() (any, error) {
		segments := strings.Split(strings.Trim(path, "/"), "/")
		parentID := ""
		current := ""
		for _, segment := range segments {
			current = reference.NormalizePath(current + "/" + segment)
			if id, ok := sess.Resolver.ResolveTopic(language, current); ok {
				parentID = id
				continue
			}
			id, err := b.ensureTopicPathSegment(ctx, sess, language, current, segment, parentID)
			if err != nil {
				return "", err
			}
			parentID = id
		}
		return parentID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *Bootstrapper) ensureTopicPathSegment(ctx context.Context, sess *Session, language, path, segment, parentID string) (string, error) {
	v, err, _ := b.topicFlight.Do("segment:"+language+":"+path, func() (any, error) {
		if id, ok := sess.Resolver.ResolveTopic(language, path); ok {
			return id, nil
		}
		id, err := createTopic(ctx, sess, language, segment, segment, parentID)
		if err != nil {
			return "", err
		}
		sess.Resolver.RememberTopic(language, path, id)
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
