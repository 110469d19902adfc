package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "seqenum.json"

// DefaultCheckpointDatabase describes the checkpoint database path used by the checkpoint commands if none is provided.
const DefaultCheckpointDatabase = "checkpoints.db"
