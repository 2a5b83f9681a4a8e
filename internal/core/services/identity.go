package services

import "github.com/google/uuid"

// collectionPrefix names the vector collection owned by a document.
const collectionPrefix = "document_"

// StableDocumentID derives a document's identity from its source path
// using a version 5 UUID in the URL namespace. The same path always
// yields the same ID, across runs and machines, so reconciliation and
// explicit uploads agree on which document a file belongs to.
func StableDocumentID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

// CollectionName returns the vector collection name for a document ID.
func CollectionName(documentID string) string {
	return collectionPrefix + documentID
}
