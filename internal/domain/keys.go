package domain

// KeyPrefix namespaces every key the application writes to the vector store.
const KeyPrefix = "studybuddy:"
